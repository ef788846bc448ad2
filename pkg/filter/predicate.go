// Package filter implements the frame-filter expression language used to
// decide which stack frame attributes an allocation to a source location.
// Expressions are parsed into a small expression tree and compiled into
// predicate values over (allocation, frame) pairs.
package filter

import (
	"strings"

	"github.com/allocview/pkg/model"
)

// Resolver resolves a stack frame's file to its package label.
// internal/locator provides the production implementation.
type Resolver interface {
	PackageLabel(file string) string
}

// Predicate is a pure function deciding whether a stack frame of an
// allocation record passes a filter.
type Predicate func(rec *model.AllocationRecord, frame model.StackFrame) bool

// Filter is a compiled, reusable frame filter. The everything flag marks
// the universal filter, which additionally disables stack truncation
// during attribution.
type Filter struct {
	pred       Predicate
	everything bool
	source     string
}

// Match reports whether the frame passes the filter for the given record.
func (f *Filter) Match(rec *model.AllocationRecord, frame model.StackFrame) bool {
	return f.pred(rec, frame)
}

// IsEverything reports whether this is the universal "show all frames"
// filter, which bypasses truncation at the instrumentation boundary.
func (f *Filter) IsEverything() bool {
	return f.everything
}

// Source returns the expression text the filter was compiled from, or ""
// for built-in filters.
func (f *Filter) Source() string {
	return f.source
}

// DefaultPredicate returns the built-in predicate matching in-project
// frames: the resolved package label is non-empty and none of the
// sentinel labels for runtime internals or uninstrumented library code.
func DefaultPredicate(r Resolver) Predicate {
	return func(_ *model.AllocationRecord, frame model.StackFrame) bool {
		return inProject(r, frame)
	}
}

// Default returns the default filter built from DefaultPredicate.
func Default(r Resolver) *Filter {
	return &Filter{pred: DefaultPredicate(r)}
}

// Everything returns the universal filter. It matches every frame and
// marks the display range as untruncated.
func Everything() *Filter {
	return &Filter{
		pred:       func(*model.AllocationRecord, model.StackFrame) bool { return true },
		everything: true,
	}
}

func inProject(r Resolver, frame model.StackFrame) bool {
	label := r.PackageLabel(frame.File)
	switch label {
	case "", model.LabelRuntime, model.LabelGo, model.LabelExternal:
		return false
	}
	return true
}

// instrumentationPrefix marks this module's own sampling wrappers in
// captured stacks.
const instrumentationPrefix = "github.com/allocview/pkg/profiling."

// allocEntryPoints are the runtime allocator entry points that terminate
// every captured allocation stack.
var allocEntryPoints = map[string]bool{
	"runtime.mallocgc":          true,
	"runtime.newobject":         true,
	"runtime.newarray":          true,
	"runtime.makeslice":         true,
	"runtime.makeslicecopy":     true,
	"runtime.growslice":         true,
	"runtime.makemap":           true,
	"runtime.makemap_small":     true,
	"runtime.mapassign":         true,
	"runtime.makechan":          true,
	"runtime.rawstring":         true,
	"runtime.rawbyteslice":      true,
	"runtime.concatstrings":     true,
	"runtime.slicebytetostring": true,
	"runtime.stringtoslicebyte": true,
	"runtime.convT":             true,
	"runtime.convTstring":       true,
	"runtime.convTslice":        true,
}

// Bottom reports whether the frame belongs to the profiling
// instrumentation itself: the runtime allocator entry points or this
// module's sampling wrappers. It is fixed, never user-configurable, and
// used only to truncate displayed stacks.
func Bottom(frame model.StackFrame) bool {
	if strings.HasPrefix(frame.Function, instrumentationPrefix) {
		return true
	}
	return allocEntryPoints[frame.Function]
}
