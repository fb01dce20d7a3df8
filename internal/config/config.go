package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Keys of the configuration document.
const (
	KeyClientID     = "client_id"
	KeyClientSecret = "client_secret"
	KeyUserAgent    = "user_agent"
	KeySubreddits   = "subreddits"
	KeyLimit        = "limit"
	KeySort         = "sort"
	KeyTime         = "time"
	KeyOutputPath   = "output_path"
)

// DefaultLimit is applied when the document leaves limit empty.
const DefaultLimit = "100"

var (
	// SortValues lists the accepted values of the sort key.
	SortValues = []string{"hot", "controversial", "top", "new"}
	// TimeValues lists the accepted values of the time key.
	TimeValues = []string{"hour", "week", "month", "year", "all"}
)

type schemaEntry struct {
	key   string
	value string
}

// defaultSchema is the document written on first run. Order is kept when writing.
var defaultSchema = []schemaEntry{
	{KeyClientID, ""},
	{KeyClientSecret, ""},
	{KeyUserAgent, ""},
	{KeySubreddits, ""},
	{KeyLimit, ""},
	{KeySort, "hot"},
	{KeyTime, "all"},
	{KeyOutputPath, "output.txt"},
}

// Document is the raw key/value content of a configuration file.
// Keys outside the default schema are carried through rewrites untouched.
type Document map[string]any

// DefaultDocument returns a fresh document holding the default schema.
func DefaultDocument() Document {
	doc := make(Document, len(defaultSchema))
	for _, entry := range defaultSchema {
		doc[entry.key] = entry.value
	}
	return doc
}

// SchemaKeys returns the default schema keys in document order.
func SchemaKeys() []string {
	keys := make([]string, 0, len(defaultSchema))
	for _, entry := range defaultSchema {
		keys = append(keys, entry.key)
	}
	return keys
}

// Config is the typed view of a configuration document.
type Config struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Subreddits   string
	Limit        string
	Sort         string
	Time         string
	OutputPath   string
}

// FromDocument reads the schema keys out of doc. Missing keys read as empty strings.
func FromDocument(doc Document) Config {
	return Config{
		ClientID:     valueString(doc[KeyClientID]),
		ClientSecret: valueString(doc[KeyClientSecret]),
		UserAgent:    valueString(doc[KeyUserAgent]),
		Subreddits:   valueString(doc[KeySubreddits]),
		Limit:        valueString(doc[KeyLimit]),
		Sort:         valueString(doc[KeySort]),
		Time:         valueString(doc[KeyTime]),
		OutputPath:   valueString(doc[KeyOutputPath]),
	}
}

// LimitValue parses the limit field. Only meaningful after Validate has passed.
func (c Config) LimitValue() (int, error) {
	limit, err := strconv.Atoi(strings.TrimSpace(c.Limit))
	if err != nil {
		return 0, fmt.Errorf("parse limit %q: %w", c.Limit, err)
	}
	return limit, nil
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
