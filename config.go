package coursepack

import "github.com/goliatone/go-coursepack/internal/runtimeconfig"

var (
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrConcurrencyInvalid      = runtimeconfig.ErrConcurrencyInvalid
	ErrTypoDistanceInvalid     = runtimeconfig.ErrTypoDistanceInvalid
)

type (
	Config           = runtimeconfig.Config
	Features         = runtimeconfig.Features
	CompileConfig    = runtimeconfig.CompileConfig
	ValidationConfig = runtimeconfig.ValidationConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
