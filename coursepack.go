package coursepack

import (
	"context"
	"fmt"

	"github.com/goliatone/go-coursepack/content"
	compilecmd "github.com/goliatone/go-coursepack/internal/commands/compile"
	"github.com/goliatone/go-coursepack/internal/flatten"
	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/internal/parser"
	"github.com/goliatone/go-coursepack/internal/vault"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

type (
	FileMap         = content.FileMap
	TierMap         = content.TierMap
	Tier            = content.Tier
	FlattenedModule = content.FlattenedModule
	Section         = content.Section
	Segment         = content.Segment
	ContentError    = content.ContentError
)

// FlattenResult is the outcome of flattening one Module.
type FlattenResult = flatten.Result

// ModuleResult is one entry of a whole-vault flatten.
type ModuleResult = vault.ModuleResult

// Report is the outcome of validating a vault.
type Report = vault.Report

// Course is a parsed course progression.
type Course = parser.Course

// CourseResult pairs a parsed course with its errors.
type CourseResult = compilecmd.CourseResult

// Option customises the module at construction time.
type Option func(*Module)

// WithLoggerProvider overrides the provider derived from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		if provider != nil {
			m.provider = provider
		}
	}
}

// WithFlattener replaces the flattening engine, mostly for tests.
func WithFlattener(service flatten.Service) Option {
	return func(m *Module) {
		if service != nil {
			m.flattener = service
		}
	}
}

// Module is the top level compiler façade.
type Module struct {
	cfg       Config
	provider  interfaces.LoggerProvider
	flattener flatten.Service
	vault     vault.Service
	logger    interfaces.Logger
}

// New constructs a compiler using the provided configuration.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	provider, err := newLoggerProvider(cfg)
	if err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg, provider: provider}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	m.logger = logging.ModuleLogger(m.provider, "coursepack")
	if m.flattener == nil {
		m.flattener = flatten.NewService(flatten.WithLogger(logging.FlattenLogger(m.provider)))
	}
	m.vault = vault.NewService(
		vault.WithFlattener(m.guardedFlattener()),
		vault.WithConcurrency(cfg.Compile.Concurrency),
		vault.WithTypoDistance(cfg.Validation.TypoDistance),
		vault.WithLogger(logging.VaultLogger(m.provider)),
	)
	return m, nil
}

// Logger returns the module-scoped root logger.
func (m *Module) Logger() interfaces.Logger {
	return m.logger
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.cfg
}

// FlattenModule compiles the Module at path. Anticipated defects come back
// as errors; an unexpected fault is captured into FlattenedModule.Error.
func (m *Module) FlattenModule(path string, files FileMap, tiers TierMap) FlattenResult {
	return m.guardedFlattener().FlattenModule(path, files, flatten.NewVisited(), tiers)
}

// FlattenAll compiles every module of the vault.
func (m *Module) FlattenAll(ctx context.Context, files FileMap, tiers TierMap) ([]ModuleResult, error) {
	return m.vault.FlattenAll(ctx, files, tiers)
}

// ValidateVault flattens every module and runs the vault-wide validators.
func (m *Module) ValidateVault(ctx context.Context, files FileMap, tiers TierMap) (Report, error) {
	return m.vault.Validate(ctx, files, tiers)
}

// ParseCourse parses the course at path and resolves its module links.
func (m *Module) ParseCourse(path string, files FileMap) (*Course, []ContentError) {
	return m.vault.ParseCourse(path, files)
}

// FlattenModuleHandler returns a go-command handler delivering results to onResult.
func (m *Module) FlattenModuleHandler(onResult func(FlattenResult)) *compilecmd.FlattenModuleHandler {
	return compilecmd.NewFlattenModuleHandler(m.guardedFlattener(), logging.CommandLogger(m.provider, "flatten"), onResult)
}

// ValidateVaultHandler returns a go-command handler delivering reports to onReport.
func (m *Module) ValidateVaultHandler(onReport func(Report)) *compilecmd.ValidateVaultHandler {
	return compilecmd.NewValidateVaultHandler(m.vault, logging.CommandLogger(m.provider, "validate"), onReport)
}

// ParseCourseHandler returns a go-command handler delivering courses to onResult.
func (m *Module) ParseCourseHandler(onResult func(CourseResult)) *compilecmd.ParseCourseHandler {
	return compilecmd.NewParseCourseHandler(m.vault, logging.CommandLogger(m.provider, "course"), onResult)
}

func (m *Module) guardedFlattener() flatten.Service {
	return recoveringFlattener{inner: m.flattener, logger: m.logger}
}

// recoveringFlattener turns a panic escaping the engine into FlattenedModule.Error.
type recoveringFlattener struct {
	inner  flatten.Service
	logger interfaces.Logger
}

func (r recoveringFlattener) FlattenModule(path string, files FileMap, visited flatten.Visited, tiers TierMap) (result FlattenResult) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		r.logger.Error("flatten.fault", "path", path, "error", recovered)
		module := result.Module
		if module == nil {
			module = &FlattenedModule{Sections: []Section{}}
		}
		module.Error = content.TruncateFault(fmt.Sprint(recovered))
		result = FlattenResult{Module: module, Errors: result.Errors}
		if result.Errors == nil {
			result.Errors = []ContentError{}
		}
	}()
	return r.inner.FlattenModule(path, files, visited, tiers)
}

// FlattenModule compiles path with a default, silent compiler.
func FlattenModule(path string, files FileMap, tiers TierMap) FlattenResult {
	m := &Module{flattener: flatten.NewService(), logger: logging.NoOp()}
	return m.FlattenModule(path, files, tiers)
}
