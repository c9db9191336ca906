package config

import "time"

type Config struct {
	Version    int      `toml:"version"`
	WatchPaths []string `toml:"watch_paths"`
	Exclude    Exclude  `toml:"exclude"`
	Watch      Watch    `toml:"watch"`
	Scan       Scan     `toml:"scan"`
	Store      Store    `toml:"store"`
	Output     Output   `toml:"output"`
	Metrics    Metrics  `toml:"metrics"`
	Tracing    Tracing  `toml:"tracing"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Scan struct {
	Workers          int      `toml:"workers"`
	RescansPerSecond float64  `toml:"rescans_per_second"`
	Extensions       []string `toml:"extensions"`
}

type Store struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Output struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

// Metrics.Address serves /metrics and /health when non-empty.
type Metrics struct {
	Address string `toml:"address"`
}

// Tracing.Endpoint is an OTLP/gRPC collector address. Spans are dropped
// when it is empty.
type Tracing struct {
	Endpoint string `toml:"endpoint"`
	Insecure bool   `toml:"insecure"`
}

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
