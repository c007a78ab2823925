package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "SLOT_MODE", "BLOCKED_SLOT", "SLOT_SERVICE_URL", "KAFKA_BROKERS", "ORDER_TOPIC", "OTEL_ENABLED", "SLOT_CAPACITY", "OTEL_TRACES_EXPORTER"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, SlotModeStatic, cfg.SlotMode)
	assert.Equal(t, "12:15 PM", cfg.BlockedSlot)
	assert.Empty(t, cfg.SlotServiceURL)
	assert.Equal(t, 20, cfg.SlotCapacity)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, "order.placed", cfg.OrderTopic)
	assert.False(t, cfg.OTelEnabled)
	assert.Equal(t, "otlp", cfg.OTelExporter)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SLOT_MODE", "windows")
	t.Setenv("BLOCKED_SLOT", "1:00 PM - 1:30 PM")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("SLOT_CAPACITY", "0")
	t.Setenv("OTEL_TRACES_EXPORTER", "stdout")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, SlotModeWindows, cfg.SlotMode)
	assert.Equal(t, "1:00 PM - 1:30 PM", cfg.BlockedSlot)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.OTelEnabled)
	assert.Zero(t, cfg.SlotCapacity)
	assert.Equal(t, "stdout", cfg.OTelExporter)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Run("slot mode", func(t *testing.T) {
		t.Setenv("SLOT_MODE", "hourly")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("otel flag", func(t *testing.T) {
		t.Setenv("SLOT_MODE", "")
		t.Setenv("OTEL_ENABLED", "maybe")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("slot capacity", func(t *testing.T) {
		t.Setenv("SLOT_MODE", "")
		t.Setenv("OTEL_ENABLED", "")
		t.Setenv("SLOT_CAPACITY", "-1")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("span exporter", func(t *testing.T) {
		t.Setenv("SLOT_MODE", "")
		t.Setenv("OTEL_ENABLED", "")
		t.Setenv("OTEL_TRACES_EXPORTER", "zipkin")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}

func TestFromEnv_BlockedSlot(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		blocked string
		want    string
		wantErr bool
	}{
		{name: "static default", mode: "", want: "12:15 PM"},
		{name: "windows default", mode: "windows", want: "12:00 PM - 12:30 PM"},
		{name: "static label", mode: "static", blocked: "1:00 PM", want: "1:00 PM"},
		{name: "window label", mode: "windows", blocked: "6:30 PM - 7:00 PM", want: "6:30 PM - 7:00 PM"},
		{name: "window label in static mode", mode: "static", blocked: "12:00 PM - 12:30 PM", wantErr: true},
		{name: "static label in windows mode", mode: "windows", blocked: "12:15 PM", wantErr: true},
		{name: "off-grid window", mode: "windows", blocked: "12:15 PM - 12:45 PM", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SLOT_MODE", tt.mode)
			t.Setenv("BLOCKED_SLOT", tt.blocked)
			t.Setenv("OTEL_ENABLED", "")
			t.Setenv("SLOT_CAPACITY", "")
			t.Setenv("OTEL_TRACES_EXPORTER", "")

			cfg, err := FromEnv()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.BlockedSlot)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("does not override existing values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("PORT=7070\nORDER_TOPIC=orders.test\n"), 0o600))

		t.Setenv("PORT", "9090")
		t.Setenv("ORDER_TOPIC", "")
		require.NoError(t, os.Unsetenv("ORDER_TOPIC"))

		require.NoError(t, LoadEnvFile(path))
		assert.Equal(t, "9090", os.Getenv("PORT"))
		assert.Equal(t, "orders.test", os.Getenv("ORDER_TOPIC"))
	})
}
