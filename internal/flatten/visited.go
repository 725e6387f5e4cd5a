package flatten

import "sort"

// Visited is the immutable set of paths on the current root-to-leaf branch.
// With returns a copy, so sibling branches never observe each other's paths.
type Visited struct {
	paths map[string]struct{}
}

// NewVisited seeds a set with paths.
func NewVisited(paths ...string) Visited {
	v := Visited{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		v.paths[p] = struct{}{}
	}
	return v
}

// Has reports whether path is already on the branch.
func (v Visited) Has(path string) bool {
	_, ok := v.paths[path]
	return ok
}

// With returns a new set containing path in addition to v.
func (v Visited) With(path string) Visited {
	next := Visited{paths: make(map[string]struct{}, len(v.paths)+1)}
	for p := range v.paths {
		next.paths[p] = struct{}{}
	}
	next.paths[path] = struct{}{}
	return next
}

// Len returns the branch depth.
func (v Visited) Len() int {
	return len(v.paths)
}

// Paths returns the branch paths in sorted order.
func (v Visited) Paths() []string {
	out := make([]string, 0, len(v.paths))
	for p := range v.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
