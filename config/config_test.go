package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:  "single service - http",
			input: "http",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP: true,
			},
		},
		{
			name:  "single service - broker",
			input: "broker",
			expected: map[ServiceMode]bool{
				ServiceModeBroker: true,
			},
		},
		{
			name:  "both services",
			input: "http,broker",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModeBroker: true,
			},
		},
		{
			name:  "whitespace and empty segments tolerated",
			input: " http , ,broker ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModeBroker: true,
			},
		},
		{
			name:        "empty input",
			input:       "",
			expectError: true,
		},
		{
			name:        "unknown service",
			input:       "http,scheduler",
			expectError: true,
		},
		{
			name:        "only separators",
			input:       ", ,",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServices(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppConfigDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		t.Fatalf("parse defaults: %v", err)
	}
	cfg.Sanitize()

	if cfg.Services != "http,broker" {
		t.Fatalf("default services = %q", cfg.Services)
	}
	if cfg.Broker.Topic != "refresh_events" {
		t.Fatalf("default broker topic = %q", cfg.Broker.Topic)
	}
	if cfg.Postgres.Port != 5432 {
		t.Fatalf("default db port = %d", cfg.Postgres.Port)
	}
	if cfg.Redis.Enabled {
		t.Fatal("redis cache should default to disabled")
	}
	if !cfg.IsHTTPServerEnabled() || !cfg.IsBrokerEnabled() {
		t.Fatal("both services should be enabled by default")
	}
}

func TestBrokerConfigSanitize(t *testing.T) {
	b := BrokerConfig{
		Topic:            "",
		PollInterval:     -time.Second,
		ReconnectBackoff: 0,
		ReconnectMax:     time.Millisecond,
		QueueCapacity:    0,
	}
	b.Sanitize()

	if b.Topic != "refresh_events" {
		t.Fatalf("topic = %q", b.Topic)
	}
	if b.PollInterval != 5*time.Second {
		t.Fatalf("poll interval = %v", b.PollInterval)
	}
	if b.ReconnectBackoff != 500*time.Millisecond {
		t.Fatalf("reconnect backoff = %v", b.ReconnectBackoff)
	}
	if b.ReconnectMax < b.ReconnectBackoff {
		t.Fatalf("reconnect max %v below backoff %v", b.ReconnectMax, b.ReconnectBackoff)
	}
	if b.QueueCapacity != 1 {
		t.Fatalf("queue capacity = %d", b.QueueCapacity)
	}
}

func TestObservabilityMetricsSanitize(t *testing.T) {
	c := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   "}
	c.Sanitize()
	if c.IsEnabled() {
		t.Fatal("metrics must be disabled when the statsd address is blank")
	}
}
