package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.EnableFileEvents)
	assert.Equal(t, 10000, cfg.CacheCapacity)
	assert.Equal(t, 4096, cfg.QueueSize)
	assert.Equal(t, "pid == 4", cfg.RowFilter)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, "file-events", cfg.NATSSubject)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "file-events", cfg.KafkaTopic)
	assert.False(t, cfg.EnableSpans)
	assert.NoError(t, cfg.Validate())
	assert.ErrorIs(t, cfg.RequireFileEvents(), ErrFileEventsDisabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("FILE_TRACER_ENABLE_FILE_EVENTS", "true")
	t.Setenv("FILE_TRACER_CACHE_CAPACITY", "128")
	t.Setenv("FILE_TRACER_ROW_FILTER", "kind == \"RenamePath\"")
	t.Setenv("FILE_TRACER_VOLUMES", `\Device\HarddiskVolume3=C:;\Device\HarddiskVolume4=D:`)
	t.Setenv("FILE_TRACER_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("FILE_TRACER_SPANS", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.EnableFileEvents)
	assert.NoError(t, cfg.RequireFileEvents())
	assert.Equal(t, 128, cfg.CacheCapacity)
	assert.Equal(t, `kind == "RenamePath"`, cfg.RowFilter)
	assert.Equal(t, []string{`\Device\HarddiskVolume3=C:`, `\Device\HarddiskVolume4=D:`}, cfg.Volumes)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EnableSpans)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("FILE_TRACER_CACHE_CAPACITY", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{CacheCapacity: 10, QueueSize: 10, NATSSubject: "s", KafkaTopic: "t"}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero capacity", func(c *Config) { c.CacheCapacity = 0 }, "cache capacity must be positive"},
		{"negative queue", func(c *Config) { c.QueueSize = -1 }, "queue size must be positive"},
		{"nats without subject", func(c *Config) { c.NATSURL = "nats://x"; c.NATSSubject = "" }, "NATS subject"},
		{"kafka without topic", func(c *Config) { c.KafkaBrokers = []string{"b"}; c.KafkaTopic = "" }, "kafka topic"},
		{"empty subject without nats", func(c *Config) { c.NATSSubject = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseCustomAttribute(t *testing.T) {
	attr, err := ParseCustomAttribute("foo=bar")
	require.NoError(t, err)
	assert.Equal(t, "foo", attr.Name)
	assert.Equal(t, "bar", attr.Expression)
}

func TestParseCustomAttribute_WithEquals(t *testing.T) {
	attr, err := ParseCustomAttribute(`check=kind=="RenamePath"`)
	require.NoError(t, err)
	assert.Equal(t, "check", attr.Name)
	assert.Equal(t, `kind=="RenamePath"`, attr.Expression)
}

func TestParseCustomAttribute_Invalid(t *testing.T) {
	tests := []struct {
		input   string
		wantErr []string
	}{
		{"invalid_no_equals", []string{"invalid attribute format", "NAME=EXPR"}},
		{"=value", []string{"name cannot be empty"}},
		{"name=", []string{"expression cannot be empty"}},
		{"name=   ", []string{"expression cannot be empty"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseCustomAttribute(tt.input)
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestParseCustomAttributes(t *testing.T) {
	attrs, err := ParseCustomAttributes([]string{`dir=path`, `proc=string(pid)`})
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, "dir", attrs[0].Name)
	assert.Equal(t, "proc", attrs[1].Name)

	_, err = ParseCustomAttributes([]string{"ok=1", "broken"})
	require.Error(t, err)
}

func TestOTELConfig_Endpoint(t *testing.T) {
	assert.Equal(t, DefaultOTLPEndpoint, (&OTELConfig{}).Endpoint())
	assert.Equal(t, "a:1", (&OTELConfig{ExporterEndpoint: "a:1"}).Endpoint())
	assert.Equal(t, "b:2", (&OTELConfig{ExporterEndpoint: "a:1", TracesEndpoint: "b:2"}).Endpoint())
}

func TestOTELConfig_ParseResourceAttributes(t *testing.T) {
	cfg := &OTELConfig{ResourceAttributes: "host.name=ws1, env = prod,broken,=empty"}

	attrs := cfg.ParseResourceAttributes()
	require.Len(t, attrs, 2)
	assert.Equal(t, "host.name", string(attrs[0].Key))
	assert.Equal(t, "ws1", attrs[0].Value.AsString())
	assert.Equal(t, "env", string(attrs[1].Key))
	assert.Equal(t, "prod", attrs[1].Value.AsString())

	assert.Nil(t, (&OTELConfig{}).ParseResourceAttributes())
}

func TestParseOTELConfig_Defaults(t *testing.T) {
	cfg, err := ParseOTELConfig()
	require.NoError(t, err)
	assert.Equal(t, "file-tracer", cfg.ServiceName)
}
