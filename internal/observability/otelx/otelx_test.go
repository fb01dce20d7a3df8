package otelx

import (
	"context"
	"testing"

	"github.com/bakkerme/reddit-link-scraper/internal/config"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), nil, config.OTelEnvConfig{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if shutdown == nil {
		t.Fatalf("expected a no-op shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInit_RejectsUnknownProtocol(t *testing.T) {
	_, err := Init(context.Background(), nil, config.OTelEnvConfig{Enabled: true, Protocol: "thrift"})
	if err == nil {
		t.Fatalf("expected error for unsupported protocol")
	}
}

func TestProtocolAndEndpointDefaults(t *testing.T) {
	cases := []struct {
		cfg          config.OTelEnvConfig
		wantProtocol string
		wantEndpoint string
	}{
		{config.OTelEnvConfig{}, "grpc", "localhost:4317"},
		{config.OTelEnvConfig{Protocol: "HTTP"}, "http/protobuf", "localhost:4318"},
		{config.OTelEnvConfig{Protocol: "http/protobuf", Endpoint: " https://collector:4318 "}, "http/protobuf", "https://collector:4318"},
	}
	for _, tc := range cases {
		if got := Protocol(tc.cfg); got != tc.wantProtocol {
			t.Fatalf("Protocol(%+v) = %q, want %q", tc.cfg, got, tc.wantProtocol)
		}
		if got := Endpoint(tc.cfg); got != tc.wantEndpoint {
			t.Fatalf("Endpoint(%+v) = %q, want %q", tc.cfg, got, tc.wantEndpoint)
		}
	}
}

func TestGRPCHost(t *testing.T) {
	for in, want := range map[string]string{
		"localhost:4317":        "localhost:4317",
		"http://collector:4317": "collector:4317",
	} {
		got, err := grpcHost(in)
		if err != nil || got != want {
			t.Fatalf("grpcHost(%q) = %q, %v", in, got, err)
		}
	}
}
