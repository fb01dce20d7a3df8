package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store loads the configuration document from disk, creating or repairing it as needed.
type Store struct {
	path   string
	codec  codec
	logger *slog.Logger
}

// NewStore returns a store for the document at path. The file extension picks the
// codec: .yaml and .yml are YAML, everything else is JSON.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, codec: codecFor(path), logger: logger}
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// LoadOrInit returns the configuration held by the document and whether the
// document existed before the call. A missing document is created from the
// default schema and reported with existed=false; such a document is never
// usable as is. Keys of the default schema missing from an existing document
// are appended with their default value, rewriting the document once per key.
func (s *Store) LoadOrInit() (Config, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc := DefaultDocument()
		if err := s.write(doc); err != nil {
			return Config{}, false, err
		}
		s.logger.Warn("Created configuration document", slog.String("path", s.path))
		return FromDocument(doc), false, nil
	}
	if err != nil {
		return Config{}, false, fmt.Errorf("read config %s: %w", s.path, err)
	}
	s.logger.Debug("Found configuration document", slog.String("path", s.path))

	doc, err := s.codec.decode(data)
	if err != nil {
		return Config{}, true, fmt.Errorf("parse config %s: %w", s.path, err)
	}

	for _, entry := range defaultSchema {
		if _, ok := doc[entry.key]; ok {
			continue
		}
		s.logger.Warn("Configuration document has no key. Appending key and default value.",
			slog.String("path", s.path), slog.String("key", entry.key))
		doc[entry.key] = entry.value
		if err := s.write(doc); err != nil {
			return Config{}, true, err
		}
		s.logger.Debug("Wrote key to configuration document", slog.String("key", entry.key))
	}

	return FromDocument(doc), true, nil
}

func (s *Store) write(doc Document) error {
	data, err := s.codec.encode(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	// Credentials live in this file.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", s.path, err)
	}
	return nil
}

// orderedKeys lists schema keys first, in schema order, then any extra keys sorted.
func orderedKeys(doc Document) []string {
	keys := make([]string, 0, len(doc))
	known := make(map[string]bool, len(defaultSchema))
	for _, entry := range defaultSchema {
		known[entry.key] = true
		if _, ok := doc[entry.key]; ok {
			keys = append(keys, entry.key)
		}
	}
	var extra []string
	for key := range doc {
		if !known[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

type codec interface {
	encode(Document) ([]byte, error)
	decode([]byte) (Document, error)
}

func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlCodec{}
	default:
		return jsonCodec{}
	}
}

type jsonCodec struct{}

func (jsonCodec) encode(doc Document) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, key := range orderedKeys(doc) {
		if i > 0 {
			compact.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(doc[key])
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		compact.Write(k)
		compact.WriteByte(':')
		compact.Write(v)
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "    "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// decode keeps numbers as json.Number so a rewrite writes them back unchanged.
func (jsonCodec) decode(data []byte) (Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after configuration object")
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

type yamlCodec struct{}

func (yamlCodec) encode(doc Document) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range orderedKeys(doc) {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(doc[key]); err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		root.Content = append(root.Content, keyNode, valueNode)
	}
	return yaml.Marshal(root)
}

func (yamlCodec) decode(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}
