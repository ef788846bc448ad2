package locator

import (
	"path"
	"sync"
)

// Static is a fixed-table Locator. It serves profiles recorded on
// another machine, whose paths cannot be resolved against the local
// filesystem, and doubles as the locator used throughout tests. Files
// missing from the table resolve to an empty label.
type Static struct {
	mu     sync.RWMutex
	labels map[string]string
	memo   map[string]Resolved
}

// NewStatic creates a Static locator from a file-to-label table.
func NewStatic(labels map[string]string) *Static {
	if labels == nil {
		labels = make(map[string]string)
	}
	return &Static{
		labels: labels,
		memo:   make(map[string]Resolved),
	}
}

// Resolve resolves a file against the table.
func (s *Static) Resolve(file string) Resolved {
	s.mu.RLock()
	if res, ok := s.memo[file]; ok {
		s.mu.RUnlock()
		return res
	}
	s.mu.RUnlock()

	res := Resolved{
		FullPath: file,
		Label:    s.labels[file],
		RelPath:  path.Base(file),
	}

	s.mu.Lock()
	s.memo[file] = res
	s.mu.Unlock()
	return res
}

// PackageLabel returns the package label for a file.
func (s *Static) PackageLabel(file string) string {
	return s.Resolve(file).Label
}

// Reset clears the resolution memo. The label table is kept.
func (s *Static) Reset() {
	s.mu.Lock()
	s.memo = make(map[string]Resolved)
	s.mu.Unlock()
}
