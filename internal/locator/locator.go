// Package locator resolves raw file identifiers from captured stack
// frames into canonical paths and package labels. Resolution is
// memoized per aggregation run.
package locator

import (
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/allocview/pkg/model"
)

// Resolved is the resolution of a file identifier.
type Resolved struct {
	// FullPath is the canonical filesystem path.
	FullPath string
	// Label is the package label: a project-relative package directory
	// for in-project files, or one of the model.Label* sentinels.
	Label string
	// RelPath is the path relative to the package root, or "" when the
	// file is outside the project.
	RelPath string
}

// Locator resolves file identifiers. Implementations memoize lookups;
// Reset discards the memo so a fresh aggregation run never sees stale
// entries.
type Locator interface {
	Resolve(file string) Resolved
	PackageLabel(file string) string
	Reset()
}

// PathLocator resolves files against a set of project roots, with the
// Go installation and the module cache classified as out-of-project.
type PathLocator struct {
	mu    sync.RWMutex
	roots []string
	memo  map[string]Resolved

	gorootSrc  string
	runtimeSrc string
}

// New creates a PathLocator for the given project roots. Roots are
// cleaned and made absolute where possible.
func New(roots []string) *PathLocator {
	cleaned := make([]string, 0, len(roots))
	for _, root := range roots {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		cleaned = append(cleaned, filepath.Clean(root))
	}

	gorootSrc := filepath.Join(runtime.GOROOT(), "src")
	return &PathLocator{
		roots:      cleaned,
		memo:       make(map[string]Resolved),
		gorootSrc:  gorootSrc,
		runtimeSrc: filepath.Join(gorootSrc, "runtime"),
	}
}

// Resolve resolves a file identifier, consulting the memo first.
func (l *PathLocator) Resolve(file string) Resolved {
	l.mu.RLock()
	if res, ok := l.memo[file]; ok {
		l.mu.RUnlock()
		return res
	}
	l.mu.RUnlock()

	res := l.resolveUncached(file)

	l.mu.Lock()
	l.memo[file] = res
	l.mu.Unlock()
	return res
}

// PackageLabel returns the package label for a file.
func (l *PathLocator) PackageLabel(file string) string {
	return l.Resolve(file).Label
}

// Reset clears the resolution memo. Called at the start of every
// aggregation run.
func (l *PathLocator) Reset() {
	l.mu.Lock()
	l.memo = make(map[string]Resolved)
	l.mu.Unlock()
}

func (l *PathLocator) resolveUncached(file string) Resolved {
	if file == "" || strings.HasPrefix(file, "<") {
		// "<autogenerated>" and friends have no source.
		return Resolved{FullPath: file, Label: model.LabelExternal}
	}

	path := filepath.Clean(file)
	res := Resolved{FullPath: path}

	switch {
	case underDir(path, l.runtimeSrc):
		res.Label = model.LabelRuntime
	case underDir(path, l.gorootSrc):
		res.Label = model.LabelGo
	case inModuleCache(path):
		res.Label = model.LabelExternal
	default:
		for _, root := range l.roots {
			if !underDir(path, root) {
				continue
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				break
			}
			res.RelPath = filepath.ToSlash(rel)
			if dir := filepath.ToSlash(filepath.Dir(rel)); dir != "." {
				res.Label = dir
			} else {
				res.Label = filepath.Base(root)
			}
			return res
		}
	}
	return res
}

func underDir(path, dir string) bool {
	if dir == "" {
		return false
	}
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

// inModuleCache reports whether the path belongs to downloaded or
// vendored dependency sources.
func inModuleCache(path string) bool {
	slashed := filepath.ToSlash(path)
	return strings.Contains(slashed, "/pkg/mod/") || strings.Contains(slashed, "/vendor/")
}
