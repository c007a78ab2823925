// Package config reads service settings from the environment, after loading
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/campus-eats/preorder/internal/messaging"
	"github.com/campus-eats/preorder/internal/slots"
	"github.com/campus-eats/preorder/internal/telemetry"
)

type SlotMode string

const (
	SlotModeStatic  SlotMode = "static"
	SlotModeWindows SlotMode = "windows"
)

type Config struct {
	Port           string
	SlotMode       SlotMode
	BlockedSlot    string
	SlotServiceURL string
	SlotCapacity   int
	KafkaBrokers   []string
	OrderTopic     string
	KitchenGroupID string
	KitchenVendor  string
	OTelEnabled    bool
	OTelEndpoint   string
	OTelExporter   string
	ServiceVersion string
}

// LoadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:           getenv("PORT", "8080"),
		SlotMode:       SlotMode(getenv("SLOT_MODE", string(SlotModeStatic))),
		BlockedSlot:    os.Getenv("BLOCKED_SLOT"),
		SlotServiceURL: os.Getenv("SLOT_SERVICE_URL"),
		SlotCapacity:   20,
		KafkaBrokers:   splitCSV(os.Getenv("KAFKA_BROKERS")),
		OrderTopic:     getenv("ORDER_TOPIC", messaging.OrderPlacedTopic),
		KitchenGroupID: getenv("KITCHEN_GROUP_ID", "kitchen-tickets"),
		KitchenVendor:  os.Getenv("KITCHEN_VENDOR_ID"),
		OTelEndpoint:   getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelExporter:   getenv("OTEL_TRACES_EXPORTER", telemetry.ExporterOTLP),
		ServiceVersion: getenv("SERVICE_VERSION", "0.1.0"),
	}

	if cfg.SlotMode != SlotModeStatic && cfg.SlotMode != SlotModeWindows {
		return Config{}, fmt.Errorf("invalid SLOT_MODE %q: want %q or %q", cfg.SlotMode, SlotModeStatic, SlotModeWindows)
	}

	if err := cfg.resolveBlockedSlot(); err != nil {
		return Config{}, err
	}

	if cfg.OTelExporter != telemetry.ExporterOTLP && cfg.OTelExporter != telemetry.ExporterStdout {
		return Config{}, fmt.Errorf("invalid OTEL_TRACES_EXPORTER %q: want %q or %q", cfg.OTelExporter, telemetry.ExporterOTLP, telemetry.ExporterStdout)
	}

	if v := os.Getenv("SLOT_CAPACITY"); v != "" {
		capacity, err := strconv.Atoi(v)
		if err != nil || capacity < 0 {
			return Config{}, fmt.Errorf("invalid SLOT_CAPACITY %q: want a non-negative integer", v)
		}
		cfg.SlotCapacity = capacity
	}

	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OTEL_ENABLED %q: %w", v, err)
		}
		cfg.OTelEnabled = enabled
	}

	return cfg, nil
}

// resolveBlockedSlot defaults the blocked label for the slot mode and checks
// that a configured one is a label the mode can offer.
func (c *Config) resolveBlockedSlot() error {
	if c.SlotMode == SlotModeWindows {
		if c.BlockedSlot == "" {
			c.BlockedSlot = slots.DefaultBlockedWindow
		}
		if !slots.IsWindowLabel(c.BlockedSlot) {
			return fmt.Errorf("invalid BLOCKED_SLOT %q: want a window label like %q", c.BlockedSlot, slots.DefaultBlockedWindow)
		}
		return nil
	}

	if c.BlockedSlot == "" {
		c.BlockedSlot = slots.DefaultBlockedSlot
	}
	if !slices.Contains(slots.DefaultSlots, c.BlockedSlot) {
		return fmt.Errorf("invalid BLOCKED_SLOT %q: want one of %v", c.BlockedSlot, slots.DefaultSlots)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
