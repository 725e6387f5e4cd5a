package compilecmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/commands"
	"github.com/goliatone/go-coursepack/internal/flatten"
	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/internal/parser"
	"github.com/goliatone/go-coursepack/internal/vault"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

const (
	flattenOperation  = "compile.flatten_module"
	validateOperation = "compile.validate_vault"
	courseOperation   = "compile.parse_course"

	moduleUnusableCode = "COMPILE_MODULE_UNUSABLE"
	courseUnusableCode = "COMPILE_COURSE_UNUSABLE"
)

var (
	// ErrModuleUnusable is returned when a module produced no output at all.
	ErrModuleUnusable = errors.New("compile command: module could not be flattened")
	// ErrCourseUnusable is returned when a course file is missing or lacks frontmatter.
	ErrCourseUnusable = errors.New("compile command: course could not be parsed")
)

var (
	_ command.Commander[FlattenModuleCommand] = (*FlattenModuleHandler)(nil)
	_ command.Commander[ValidateVaultCommand] = (*ValidateVaultHandler)(nil)
	_ command.Commander[ParseCourseCommand]   = (*ParseCourseHandler)(nil)
)

// CourseResult pairs a parsed course with the errors found while resolving it.
type CourseResult struct {
	Course *parser.Course
	Errors []content.ContentError
}

// FlattenModuleHandler runs module flattening through the shared command handler foundation.
type FlattenModuleHandler struct {
	inner *commands.Handler[FlattenModuleCommand]
}

// NewFlattenModuleHandler creates a handler bound to the flattening service. onResult receives
// every Result, including those of unusable modules.
func NewFlattenModuleHandler(service flatten.Service, logger interfaces.Logger, onResult func(flatten.Result), opts ...commands.HandlerOption[FlattenModuleCommand]) *FlattenModuleHandler {
	if service == nil {
		service = flatten.NewService()
	}
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg FlattenModuleCommand) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		result := service.FlattenModule(msg.Path, msg.Files, flatten.NewVisited(), msg.Tiers)
		if onResult != nil {
			onResult(result)
		}
		errorsCount, warnings := content.CountBySeverity(result.Errors)
		logging.WithFields(baseLogger.WithContext(ctx), map[string]any{
			"module_path":   msg.Path,
			"error_count":   errorsCount,
			"warning_count": warnings,
		}).Info("compile.command.flatten_module.completed")

		if result.Module == nil {
			return commands.WithExecuteCode(ErrModuleUnusable, moduleUnusableCode)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[FlattenModuleCommand]{
		commands.WithLogger[FlattenModuleCommand](baseLogger),
		commands.WithOperation[FlattenModuleCommand](flattenOperation),
		commands.WithMessageFields(func(msg FlattenModuleCommand) map[string]any {
			fields := map[string]any{
				"module_path": msg.Path,
				"file_count":  len(msg.Files),
			}
			if len(msg.Tiers) > 0 {
				fields["tier_count"] = len(msg.Tiers)
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[FlattenModuleCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &FlattenModuleHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[FlattenModuleCommand].
func (h *FlattenModuleHandler) Execute(ctx context.Context, msg FlattenModuleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ValidateVaultHandler runs the vault-wide validation pass.
type ValidateVaultHandler struct {
	inner *commands.Handler[ValidateVaultCommand]
}

// NewValidateVaultHandler creates a handler bound to the vault service. Content defects do not
// fail the command; they are delivered through onReport.
func NewValidateVaultHandler(service vault.Service, logger interfaces.Logger, onReport func(vault.Report), opts ...commands.HandlerOption[ValidateVaultCommand]) *ValidateVaultHandler {
	if service == nil {
		service = vault.NewService()
	}
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ValidateVaultCommand) error {
		report, err := service.Validate(ctx, msg.Files, msg.Tiers)
		if err != nil {
			return err
		}
		if onReport != nil {
			onReport(report)
		}
		logging.WithFields(baseLogger.WithContext(ctx), map[string]any{
			"module_count":  len(report.Modules),
			"error_count":   report.Errored,
			"warning_count": report.Warnings,
		}).Info("compile.command.validate_vault.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[ValidateVaultCommand]{
		commands.WithLogger[ValidateVaultCommand](baseLogger),
		commands.WithOperation[ValidateVaultCommand](validateOperation),
		commands.WithMessageFields(func(msg ValidateVaultCommand) map[string]any {
			return map[string]any{"file_count": len(msg.Files)}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ValidateVaultCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ValidateVaultHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ValidateVaultCommand].
func (h *ValidateVaultHandler) Execute(ctx context.Context, msg ValidateVaultCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ParseCourseHandler parses a course file and resolves its module links.
type ParseCourseHandler struct {
	inner *commands.Handler[ParseCourseCommand]
}

// NewParseCourseHandler creates a handler bound to the vault service.
func NewParseCourseHandler(service vault.Service, logger interfaces.Logger, onResult func(CourseResult), opts ...commands.HandlerOption[ParseCourseCommand]) *ParseCourseHandler {
	if service == nil {
		service = vault.NewService()
	}
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ParseCourseCommand) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		course, errs := service.ParseCourse(msg.Path, msg.Files)
		if onResult != nil {
			onResult(CourseResult{Course: course, Errors: errs})
		}
		if course == nil {
			return commands.WithExecuteCode(ErrCourseUnusable, courseUnusableCode)
		}
		logging.WithFields(baseLogger.WithContext(ctx), map[string]any{
			"course_path": msg.Path,
			"items":       len(course.Progression),
			"error_count": len(errs),
		}).Info("compile.command.parse_course.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[ParseCourseCommand]{
		commands.WithLogger[ParseCourseCommand](baseLogger),
		commands.WithOperation[ParseCourseCommand](courseOperation),
		commands.WithMessageFields(func(msg ParseCourseCommand) map[string]any {
			return map[string]any{"course_path": msg.Path}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ParseCourseCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ParseCourseHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ParseCourseCommand].
func (h *ParseCourseHandler) Execute(ctx context.Context, msg ParseCourseCommand) error {
	return h.inner.Execute(ctx, msg)
}
