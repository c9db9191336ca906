package config

import (
	"domscan/internal/core/errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Validate checks a fully defaulted configuration.
func Validate(cfg *Config) error {
	checks := []func(*Config) error{
		validateVersion,
		validateExclude,
		validateScan,
		validateOutput,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid config")
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for _, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid exclude.dirs pattern %q: %w", pattern, err)
		}
	}
	for _, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid exclude.files pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func validateScan(cfg *Config) error {
	for i, ext := range cfg.Scan.Extensions {
		if ext == "" {
			return fmt.Errorf("scan.extensions[%d] must not be empty", i)
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	switch cfg.Output.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("output.format must be one of: %s, %s; got %q", FormatText, FormatJSON, cfg.Output.Format)
	}
	if cfg.Store.Enabled && strings.TrimSpace(cfg.Store.Path) == "" {
		return fmt.Errorf("store.path must not be empty when the store is enabled")
	}
	return nil
}
