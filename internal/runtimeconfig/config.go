package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
)

var ErrLoggingProviderRequired = errors.New("coursepack config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("coursepack config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("coursepack config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("coursepack config: logging format is invalid")

// ErrConcurrencyInvalid rejects a negative vault flattening limit.
var ErrConcurrencyInvalid = errors.New("coursepack config: compile concurrency must be zero or positive")

// ErrTypoDistanceInvalid rejects a negative typo edit distance.
var ErrTypoDistanceInvalid = errors.New("coursepack config: typo distance must be zero or positive")

// Config aggregates feature flags and tuning for the compiler.
type Config struct {
	Features   Features
	Compile    CompileConfig
	Validation ValidationConfig
	Logging    LoggingConfig
}

// Features toggles module functionality.
type Features struct {
	Logger bool
}

// CompileConfig tunes vault-wide flattening.
type CompileConfig struct {
	// Concurrency bounds the number of modules flattened in parallel. Zero selects the default.
	Concurrency int
}

// ValidationConfig tunes the vault validators.
type ValidationConfig struct {
	// TypoDistance is the maximum edit distance for a key to count as a typo.
	TypoDistance int
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the defaults used by the CLI and the facade.
func DefaultConfig() Config {
	return Config{
		Compile: CompileConfig{
			Concurrency: 4,
		},
		Validation: ValidationConfig{
			TypoDistance: 2,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Compile.Concurrency < 0 {
		return fmt.Errorf("%w: %d", ErrConcurrencyInvalid, cfg.Compile.Concurrency)
	}
	if cfg.Validation.TypoDistance < 0 {
		return fmt.Errorf("%w: %d", ErrTypoDistanceInvalid, cfg.Validation.TypoDistance)
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
