package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: DOMSCAN_[SECTION]_[KEY] (e.g., DOMSCAN_STORE_PATH).
func ApplyEnvOverrides(cfg *Config) {
	setEnvDuration(&cfg.Watch.Debounce, "DOMSCAN_WATCH_DEBOUNCE")

	setEnvInt(&cfg.Scan.Workers, "DOMSCAN_SCAN_WORKERS")
	setEnvFloat64(&cfg.Scan.RescansPerSecond, "DOMSCAN_SCAN_RESCANS_PER_SECOND")

	setEnvBool(&cfg.Store.Enabled, "DOMSCAN_STORE_ENABLED")
	setEnvString(&cfg.Store.Path, "DOMSCAN_STORE_PATH")

	setEnvString(&cfg.Output.Format, "DOMSCAN_OUTPUT_FORMAT")
	setEnvString(&cfg.Output.Path, "DOMSCAN_OUTPUT_PATH")

	setEnvString(&cfg.Metrics.Address, "DOMSCAN_METRICS_ADDRESS")

	setEnvString(&cfg.Tracing.Endpoint, "DOMSCAN_TRACING_ENDPOINT")
	setEnvBool(&cfg.Tracing.Insecure, "DOMSCAN_TRACING_INSECURE")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
