package coursepack

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-coursepack/internal/logging/console"
	"github.com/goliatone/go-coursepack/internal/logging/gologger"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// newLoggerProvider builds the provider selected by cfg. A disabled logger
// feature yields nil so every module logger falls back to a no-op.
func newLoggerProvider(cfg Config) (interfaces.LoggerProvider, error) {
	if !cfg.Features.Logger {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "console":
		level, _ := console.ParseLevel(cfg.Logging.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Logging.Provider)
	}
}
