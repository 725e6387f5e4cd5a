package vault

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/flatten"
	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/internal/markdown"
	"github.com/goliatone/go-coursepack/internal/parser"
	"github.com/goliatone/go-coursepack/internal/validation"
	"github.com/goliatone/go-coursepack/internal/wikilink"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// DefaultConcurrency bounds the number of modules flattened at once.
const DefaultConcurrency = 4

// ModuleResult is the flattened output of one module file.
type ModuleResult struct {
	Path string `json:"path"`
	flatten.Result
}

// Report is the outcome of validating a whole vault.
type Report struct {
	Modules  []ModuleResult         `json:"modules"`
	Courses  []*parser.Course       `json:"-"`
	Errors   []content.ContentError `json:"errors"`
	Errored  int                    `json:"errorCount"`
	Warnings int                    `json:"warningCount"`
}

// HasErrors reports whether any error-severity entry was found.
func (r Report) HasErrors() bool {
	return r.Errored > 0
}

// Service runs whole-vault passes.
type Service interface {
	FlattenAll(ctx context.Context, files content.FileMap, tiers content.TierMap) ([]ModuleResult, error)
	Validate(ctx context.Context, files content.FileMap, tiers content.TierMap) (Report, error)
	ParseCourse(path string, files content.FileMap) (*parser.Course, []content.ContentError)
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithFlattener overrides the flattening service.
func WithFlattener(flattener flatten.Service) ServiceOption {
	return func(s *service) {
		if flattener != nil {
			s.flattener = flattener
		}
	}
}

// WithConcurrency bounds the number of modules flattened in parallel.
func WithConcurrency(limit int) ServiceOption {
	return func(s *service) {
		if limit > 0 {
			s.concurrency = limit
		}
	}
}

// WithTypoDistance sets the edit distance used by the frontmatter typo pass.
func WithTypoDistance(distance int) ServiceOption {
	return func(s *service) {
		if distance > 0 {
			s.typoDistance = distance
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	flattener    flatten.Service
	concurrency  int
	typoDistance int
	logger       interfaces.Logger
}

// NewService constructs a vault service.
func NewService(opts ...ServiceOption) Service {
	svc := &service{
		flattener:    flatten.NewService(),
		concurrency:  DefaultConcurrency,
		typoDistance: validation.DefaultTypoDistance,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// FlattenAll flattens every module of the vault concurrently. Results are
// returned in module path order regardless of completion order.
func (s *service) FlattenAll(ctx context.Context, files content.FileMap, tiers content.TierMap) ([]ModuleResult, error) {
	if files == nil {
		return nil, content.ErrFilesRequired
	}
	modules := BuildIndex(files, tiers).Modules
	results := make([]ModuleResult, len(modules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, modulePath := range modules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ModuleResult{
				Path:   modulePath,
				Result: s.flattener.FlattenModule(modulePath, files, flatten.NewVisited(), tiers),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("vault: flatten modules: %w", err)
	}

	s.logger.Debug("vault.flatten_all", "modules", len(results))
	return results, nil
}

// Validate flattens every module, parses every standalone file and runs the
// vault-wide UUID, slug and typo passes. Identical entries are reported once
// and errors precede warnings.
func (s *service) Validate(ctx context.Context, files content.FileMap, tiers content.TierMap) (Report, error) {
	modules, err := s.FlattenAll(ctx, files, tiers)
	if err != nil {
		return Report{}, err
	}
	idx := BuildIndex(files, tiers)

	var (
		errs        []content.ContentError
		ids         []validation.IDRecord
		slugs       []validation.SlugRecord
		frontmatter []validation.FrontmatterRecord
		courses     []*parser.Course
	)
	for _, module := range modules {
		errs = append(errs, module.Errors...)
	}

	record := func(p string, known []string) markdown.Document {
		doc := markdown.ParseFrontMatter(files[p])
		frontmatter = append(frontmatter, validation.FrontmatterRecord{
			File:     p,
			Keys:     doc.Keys,
			KeyLines: doc.KeyLines,
			Known:    known,
		})
		if id := doc.Field("id"); id != "" {
			ids = append(ids, validation.IDRecord{File: p, Line: doc.LineOf("id"), ID: id})
		}
		return doc
	}

	for _, p := range idx.Modules {
		doc := record(p, parser.ModuleFrontmatterKeys)
		if slug := doc.Field("slug"); slug != "" {
			slugs = append(slugs, validation.SlugRecord{File: p, Line: doc.LineOf("slug"), Slug: slug})
		}
		// Inline pages carry their own ids.
		if parsed, _ := parser.ParseModule(p, files[p]); parsed != nil {
			for _, section := range parsed.Sections {
				if section.Kind == parser.ModulePage && section.ContentID != "" {
					ids = append(ids, validation.IDRecord{File: p, Line: section.Line, ID: section.ContentID})
				}
			}
		}
	}
	for _, p := range idx.LearningOutcomes {
		record(p, parser.LearningOutcomeFrontmatterKeys)
		_, parseErrs := parser.ParseLearningOutcome(p, files[p])
		errs = append(errs, parseErrs...)
	}
	for _, p := range idx.Lenses {
		record(p, parser.LensFrontmatterKeys)
		_, parseErrs := parser.ParseLens(p, files[p])
		errs = append(errs, parseErrs...)
	}
	for _, p := range idx.Courses {
		doc := record(p, parser.CourseFrontmatterKeys)
		if slug := doc.Field("slug"); slug != "" {
			slugs = append(slugs, validation.SlugRecord{File: p, Line: doc.LineOf("slug"), Slug: slug})
		}
		course, courseErrs := s.ParseCourse(p, files)
		errs = append(errs, courseErrs...)
		if course != nil {
			courses = append(courses, course)
		}
	}

	errs = append(errs, validation.CheckUUIDs(ids)...)
	errs = append(errs, validation.CheckSlugs(slugs)...)
	errs = append(errs, validation.CheckFrontmatterTypos(frontmatter, s.typoDistance)...)

	errs = content.SortForDisplay(content.Dedupe(errs))
	errored, warnings := content.CountBySeverity(errs)
	if errs == nil {
		errs = []content.ContentError{}
	}

	s.logger.Debug("vault.validate",
		"modules", len(modules),
		"courses", len(courses),
		"errors", errored,
		"warnings", warnings,
	)

	return Report{
		Modules:  modules,
		Courses:  courses,
		Errors:   errs,
		Errored:  errored,
		Warnings: warnings,
	}, nil
}

// ParseCourse parses the course at path and resolves each module entry to a
// vault path. Entries whose module cannot be found are dropped with an error.
func (s *service) ParseCourse(path string, files content.FileMap) (*parser.Course, []content.ContentError) {
	text, ok := files[path]
	if !ok {
		return nil, []content.ContentError{
			content.NewError(content.KindMissingReference, path, 0, fmt.Sprintf("Course file not found: %s", path)),
		}
	}

	course, errs := parser.ParseCourse(path, text)
	if course == nil {
		return nil, errs
	}

	progression := course.Progression[:0]
	for _, item := range course.Progression {
		if item.Kind != parser.ProgressionModule {
			progression = append(progression, item)
			continue
		}
		resolved, err := wikilink.ResolvePath(item.Link.Path, path)
		if err != nil {
			entry := content.NewError(content.KindInvalidWikilink, path, item.Line,
				fmt.Sprintf("Cannot resolve module link %s: %v", item.Link.Raw, err))
			if errors.Is(err, wikilink.ErrEscapesVault) {
				entry = entry.WithSuggestion("Links may not point outside the content vault")
			}
			errs = append(errs, entry)
			continue
		}
		found, ok := wikilink.FindFileWithExtension(resolved, files)
		if !ok {
			entry := content.NewError(content.KindMissingReference, path, item.Line,
				fmt.Sprintf("Referenced file not found: %s", resolved))
			if suggestion := wikilink.FormatSuggestion(wikilink.FindSimilarFiles(resolved, files, wikilink.DefaultSuggestionLimit), path); suggestion != "" {
				entry = entry.WithSuggestion(suggestion)
			}
			errs = append(errs, entry)
			continue
		}
		item.Path = found
		progression = append(progression, item)
	}
	course.Progression = progression

	return course, errs
}
