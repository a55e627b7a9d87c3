package config

import "time"

// BrokerConfig contains refresh-notification broker configuration.
//
// The broker holds the single LISTEN subscription against Postgres and fans
// refresh notifications out to open channel streams. Exactly one broker
// service should run per deployment; running more is safe but produces
// duplicate (at-least-once) events.
type BrokerConfig struct {
	// Topic is the Postgres notification channel the completion-log trigger
	// publishes on.
	Topic string `env:"BROKER_TOPIC" envDefault:"refresh_events"`

	// PollInterval is how long a single timed wait for notifications lasts
	// before the broker logs a liveness heartbeat and waits again.
	PollInterval time.Duration `env:"BROKER_POLL_INTERVAL" envDefault:"5s"`

	// ReconnectBackoff is the initial delay before re-establishing a lost
	// LISTEN connection. Doubles per consecutive failure up to ReconnectMax.
	ReconnectBackoff time.Duration `env:"BROKER_RECONNECT_BACKOFF" envDefault:"500ms"`

	// ReconnectMax caps the reconnect backoff.
	ReconnectMax time.Duration `env:"BROKER_RECONNECT_MAX" envDefault:"30s"`

	// QueueCapacity is the per-channel event buffer bound in the stream hub.
	// Oldest events are dropped once a queue with no attached subscriber
	// exceeds this bound.
	QueueCapacity int `env:"BROKER_QUEUE_CAPACITY" envDefault:"16"`
}

// Sanitize applies guardrails to broker configuration values.
func (b *BrokerConfig) Sanitize() {
	if b.Topic == "" {
		b.Topic = "refresh_events"
	}
	if b.PollInterval <= 0 {
		b.PollInterval = 5 * time.Second
	}
	if b.ReconnectBackoff <= 0 {
		b.ReconnectBackoff = 500 * time.Millisecond
	}
	if b.ReconnectMax < b.ReconnectBackoff {
		b.ReconnectMax = 30 * time.Second
	}
	if b.QueueCapacity < 1 {
		b.QueueCapacity = 1
	}
}
