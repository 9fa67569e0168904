// Package packagemanagers infers package managers from the files present in a repository.
package packagemanagers

// PathSet answers presence queries over a repository file list
type PathSet map[string]struct{}

// NewPathSet indexes files for exact-path lookups
func NewPathSet(files []string) PathSet {
	set := make(PathSet, len(files))
	for _, f := range files {
		set[f] = struct{}{}
	}
	return set
}

// Has reports whether path is in the set
func (s PathSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// HasAny reports whether any of paths is in the set
func (s PathSet) HasAny(paths ...string) bool {
	for _, p := range paths {
		if s.Has(p) {
			return true
		}
	}
	return false
}
