package flatten

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/internal/parser"
	"github.com/goliatone/go-coursepack/internal/validation"
	"github.com/goliatone/go-coursepack/internal/wikilink"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// Result is the outcome of flattening one Module. Module is nil when the
// Module file itself is unusable; Errors is always complete.
type Result struct {
	Module *content.FlattenedModule `json:"module"`
	Errors []content.ContentError   `json:"errors"`
}

// Service compiles Modules into FlattenedModules.
type Service interface {
	FlattenModule(path string, files content.FileMap, visited Visited, tiers content.TierMap) Result
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithLogger overrides the logger used for debug traces.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	logger interfaces.Logger
}

// NewService constructs a flattening service.
func NewService(opts ...ServiceOption) Service {
	svc := &service{logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// FlattenModule flattens path with a silent service.
func FlattenModule(path string, files content.FileMap, visited Visited, tiers content.TierMap) Result {
	return NewService().FlattenModule(path, files, visited, tiers)
}

// FlattenModule resolves the Module at path through its Learning Outcomes
// and Lenses. Anticipated defects are returned as errors and only drop the
// affected Section or Segment.
func (s *service) FlattenModule(path string, files content.FileMap, visited Visited, tiers content.TierMap) Result {
	r := &run{files: files, tiers: tiers}
	module := r.module(path, visited)

	s.logger.Debug("flatten.module",
		"path", path,
		"resolved", module != nil,
		"sections", sectionCount(module),
		"errors", len(r.errs),
	)

	errs := r.errs
	if errs == nil {
		errs = []content.ContentError{}
	}
	return Result{Module: module, Errors: errs}
}

func sectionCount(module *content.FlattenedModule) int {
	if module == nil {
		return 0
	}
	return len(module.Sections)
}

// run carries the state of one top-level call.
type run struct {
	files content.FileMap
	tiers content.TierMap
	errs  []content.ContentError
}

func (r *run) add(errs ...content.ContentError) {
	r.errs = append(r.errs, errs...)
}

// learningOutcomeContext is what a lens Section inherits from the Learning
// Outcome that referenced it.
type learningOutcomeContext struct {
	id       string
	name     string
	optional bool
}

func (r *run) module(path string, visited Visited) *content.FlattenedModule {
	if visited.Has(path) {
		r.add(content.NewError(content.KindCircularReference, path, 0,
			fmt.Sprintf("Circular reference detected: %s", path)).
			WithSuggestion("Remove the reference that leads back to this module"))
		return nil
	}

	text, ok := r.files[path]
	if !ok {
		entry := content.NewError(content.KindMissingReference, path, 0,
			fmt.Sprintf("Module file not found: %s", path))
		if suggestion := wikilink.FormatSuggestion(wikilink.FindSimilarFiles(path, r.files, wikilink.DefaultSuggestionLimit), ""); suggestion != "" {
			entry = entry.WithSuggestion(suggestion)
		}
		r.add(entry)
		return nil
	}

	parsed, errs := parser.ParseModule(path, text)
	r.add(errs...)
	if parsed == nil {
		return nil
	}

	branch := visited.With(path)
	tier := r.tiers.Lookup(path)

	out := &content.FlattenedModule{
		Slug:      parsed.Slug,
		Title:     parsed.Title,
		ContentID: parsed.ContentID,
		Sections:  []content.Section{},
	}

	for _, section := range parsed.Sections {
		switch section.Kind {
		case parser.ModuleLearningOutcome:
			out.Sections = append(out.Sections, r.learningOutcome(path, tier, section, branch)...)
		case parser.ModulePage:
			out.Sections = append(out.Sections, content.Section{
				Type:      content.SectionPage,
				Meta:      content.SectionMeta{Title: section.Title},
				Segments:  staticSegments(section.Segments),
				Optional:  section.Optional,
				ContentID: section.ContentID,
			})
		case parser.ModuleUncategorized:
			for _, ref := range section.Lenses {
				if lens, ok := r.lens(path, tier, ref, branch, learningOutcomeContext{}); ok {
					out.Sections = append(out.Sections, lens)
				}
			}
		}
	}

	return out
}

// target is a reference that passed resolution, tier and cycle checks.
type target struct {
	path string
	tier content.Tier
}

// follow resolves raw from the file at from and applies the tier and cycle
// checks of the traversed edge. ok is false when the reference must not be
// followed; errors have been recorded unless the child is ignored.
func (r *run) follow(from string, fromTier content.Tier, raw string, line int, edge string, visited Visited) (target, bool) {
	resolution, err := wikilink.Resolve(raw, from, r.files)
	if err != nil {
		r.add(referenceError(from, line, edge, err))
		return target{}, false
	}

	childTier := r.tiers.Lookup(resolution.Path)
	decision := validation.CheckTierViolation(from, fromTier, resolution.Path, childTier, edge, line)
	if decision.Skip {
		return target{}, false
	}
	if decision.Violation != nil {
		r.add(*decision.Violation)
	}

	if visited.Has(resolution.Path) {
		r.add(content.NewError(content.KindCircularReference, from, line,
			fmt.Sprintf("Circular reference detected: %s references %s", from, resolution.Path)).
			WithSuggestion(fmt.Sprintf("Remove the %s reference to %s", edge, resolution.Path)))
		return target{}, false
	}

	return target{path: resolution.Path, tier: childTier}, true
}

func referenceError(from string, line int, edge string, err error) content.ContentError {
	var (
		syntaxErr   *wikilink.SyntaxError
		notFoundErr *wikilink.NotFoundError
		pathErr     *wikilink.PathError
	)
	switch {
	case errors.As(err, &syntaxErr):
		return content.NewError(content.KindInvalidWikilink, from, line,
			fmt.Sprintf("Invalid %s wikilink: %s", edge, syntaxErr.Message)).
			WithSuggestion(syntaxErr.Suggestion)
	case errors.As(err, &notFoundErr):
		entry := content.NewError(content.KindMissingReference, from, line, notFoundErr.Error())
		if notFoundErr.Suggestion != "" {
			entry = entry.WithSuggestion(notFoundErr.Suggestion)
		}
		return entry
	case errors.As(err, &pathErr):
		entry := content.NewError(content.KindInvalidWikilink, from, line, pathErr.Error())
		if errors.Is(err, wikilink.ErrEscapesVault) {
			entry = entry.WithSuggestion("Links may not point outside the content vault")
		}
		return entry
	default:
		return content.NewError(content.KindInvalidWikilink, from, line, err.Error())
	}
}

func (r *run) learningOutcome(modulePath string, moduleTier content.Tier, section parser.ModuleSection, visited Visited) []content.Section {
	lo, ok := r.follow(modulePath, moduleTier, section.Source, section.SourceLine, "Learning Outcome", visited)
	if !ok {
		return nil
	}

	parsed, errs := parser.ParseLearningOutcome(lo.path, r.files[lo.path])
	r.add(errs...)

	branch := visited.With(lo.path)
	ctx := learningOutcomeContext{id: parsed.ID, name: parsed.Name, optional: section.Optional}

	var out []content.Section
	for _, ref := range parsed.Lenses {
		if lens, ok := r.lens(lo.path, lo.tier, ref, branch, ctx); ok {
			out = append(out, lens)
		}
	}

	if parsed.Test != nil {
		out = append(out, content.Section{
			Type:                content.SectionTest,
			Segments:            staticSegments(parsed.Test.Segments),
			Optional:            ctx.optional,
			LearningOutcomeID:   ctx.id,
			LearningOutcomeName: ctx.name,
		})
	}
	return out
}

// lens produces the single Section for one lens reference. The last typed
// LensSection decides type and meta; segments of every LensSection are kept.
func (r *run) lens(parentPath string, parentTier content.Tier, ref parser.LensRef, visited Visited, lo learningOutcomeContext) (content.Section, bool) {
	lens, ok := r.follow(parentPath, parentTier, ref.Source, ref.SourceLine, "lens", visited)
	if !ok {
		return content.Section{}, false
	}

	parsed, errs := parser.ParseLens(lens.path, r.files[lens.path])
	r.add(errs...)

	branch := visited.With(lens.path)
	out := content.Section{
		Type:                content.SectionPage,
		Segments:            []content.Segment{},
		Optional:            lo.optional || ref.Optional,
		ContentID:           parsed.ID,
		LearningOutcomeID:   lo.id,
		LearningOutcomeName: lo.name,
	}

	for _, section := range parsed.Sections {
		var src *source
		switch section.Kind {
		case parser.LensPage:
			out.Type = content.SectionPage
			out.Meta = content.SectionMeta{Title: section.Title}
			out.VideoID = ""
		case parser.LensArticle, parser.LensVideo:
			src = r.source(lens, section, branch)
			out.Type, out.Meta = sourceMeta(section, src)
			out.VideoID = out.Meta.VideoID
		}

		for _, seg := range section.Segments {
			if converted, ok := r.segment(lens.path, seg, src); ok {
				out.Segments = append(out.Segments, converted)
			}
		}
	}

	return out, true
}
