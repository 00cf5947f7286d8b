// Package config loads file-tracer settings from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ErrFileEventsDisabled is returned when the pipeline is started without
// FILE_TRACER_ENABLE_FILE_EVENTS.
var ErrFileEventsDisabled = errors.New("file events are disabled; set FILE_TRACER_ENABLE_FILE_EVENTS=true to enable them")

// SystemPID is the process id of the kernel System process.
const SystemPID = 4

// Config holds the pipeline configuration.
type Config struct {
	// EnableFileEvents gates the whole pipeline.
	EnableFileEvents bool `env:"FILE_TRACER_ENABLE_FILE_EVENTS" envDefault:"false"`

	// CacheCapacity bounds the handle cache.
	CacheCapacity int `env:"FILE_TRACER_CACHE_CAPACITY" envDefault:"10000"`
	// QueueSize bounds the post-processing queue.
	QueueSize int `env:"FILE_TRACER_QUEUE_SIZE" envDefault:"4096"`

	// RowFilter selects the events materialized as table rows.
	RowFilter string `env:"FILE_TRACER_ROW_FILTER" envDefault:"pid == 4"`

	// Volumes overrides drive discovery with DEVICE=DRIVE pairs.
	Volumes []string `env:"FILE_TRACER_VOLUMES" envSeparator:";"`

	MetricsAddr string `env:"FILE_TRACER_METRICS_ADDR"`

	NATSURL     string `env:"FILE_TRACER_NATS_URL"`
	NATSSubject string `env:"FILE_TRACER_NATS_SUBJECT" envDefault:"file-events"`

	KafkaBrokers []string `env:"FILE_TRACER_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"FILE_TRACER_KAFKA_TOPIC" envDefault:"file-events"`

	EnableSpans bool `env:"FILE_TRACER_SPANS" envDefault:"false"`
	// TraceID is an optional expression grouping spans into traces.
	TraceID string `env:"FILE_TRACER_TRACE_ID"`
}

// Load parses Config from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and sink settings.
func (c *Config) Validate() error {
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("cache capacity must be positive, got %d", c.CacheCapacity)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive, got %d", c.QueueSize)
	}
	if c.NATSURL != "" && c.NATSSubject == "" {
		return errors.New("NATS subject cannot be empty when a NATS URL is set")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("kafka topic cannot be empty when brokers are set")
	}
	return nil
}

// RequireFileEvents returns ErrFileEventsDisabled unless the pipeline is enabled.
func (c *Config) RequireFileEvents() error {
	if !c.EnableFileEvents {
		return ErrFileEventsDisabled
	}
	return nil
}
