package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-coursepack/content"
)

// DefaultPatterns selects the files a content vault is made of.
var DefaultPatterns = []string{"*.md", "*.timestamps.json"}

// LoaderConfig configures how vault files are discovered under a root.
type LoaderConfig struct {
	// Patterns limits loaded files to those whose base name matches one of the globs.
	Patterns []string
	// SkipHidden ignores dot-directories such as .git or .obsidian.
	SkipHidden bool
}

// Loader reads a content vault from a filesystem into an in-memory FileMap.
type Loader struct {
	fs         fs.FS
	patterns   []string
	skipHidden bool
}

// NewLoader constructs a Loader using the provided filesystem and configuration.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	return &Loader{
		fs:         filesystem,
		patterns:   append([]string(nil), patterns...),
		skipHidden: cfg.SkipHidden,
	}
}

// LoadVault walks root and returns every matching file keyed by its path
// relative to root.
func (l *Loader) LoadVault(ctx context.Context, root string) (content.FileMap, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	root = path.Clean(filepath.ToSlash(root))
	if root == "" {
		root = "."
	}

	files := content.FileMap{}

	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if current != root && l.skipHidden && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !l.matches(d.Name()) {
			return nil
		}

		data, err := fs.ReadFile(l.fs, current)
		if err != nil {
			return fmt.Errorf("markdown loader read %s: %w", current, err)
		}
		files[relativeTo(root, current)] = string(data)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return files, nil
}

func (l *Loader) matches(name string) bool {
	for _, pattern := range l.patterns {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func relativeTo(root, current string) string {
	if root == "." {
		return current
	}
	return strings.TrimPrefix(strings.TrimPrefix(current, root), "/")
}
