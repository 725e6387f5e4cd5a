package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

const (
	rootModule     = "coursepack"
	flattenModule  = "coursepack.flatten"
	vaultModule    = "coursepack.vault"
	commandsModule = "coursepack.commands"
)

const (
	fieldModulePath = "module_path"
	fieldVaultRoot  = "vault_root"
	fieldOperation  = "operation"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// FlattenLogger returns the logger namespace reserved for the flattening engine.
func FlattenLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, flattenModule)
}

// VaultLogger returns the logger namespace reserved for whole-vault passes.
func VaultLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, vaultModule)
}

// CommandLogger returns the logger namespace for a command handler, e.g.
// "coursepack.commands.flatten".
func CommandLogger(provider interfaces.LoggerProvider, command string) interfaces.Logger {
	command = strings.TrimSpace(command)
	if command == "" {
		return ModuleLogger(provider, commandsModule)
	}
	return ModuleLogger(provider, commandsModule+"."+command)
}

// WithCompileContext enriches the provided logger with the module path, vault
// root and operation being compiled. Empty values are ignored.
func WithCompileContext(logger interfaces.Logger, modulePath, vaultRoot, operation string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(modulePath); trimmed != "" {
		fields[fieldModulePath] = trimmed
	}
	if trimmed := strings.TrimSpace(vaultRoot); trimmed != "" {
		fields[fieldVaultRoot] = trimmed
	}
	if trimmed := strings.TrimSpace(operation); trimmed != "" {
		fields[fieldOperation] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
