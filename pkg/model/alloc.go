// Package model defines the core data types for allocation profiling:
// captured stack frames, allocation records, and source locations.
package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// StackFrame represents a single frame in a captured call stack.
// A non-positive Line means the line is unknown.
type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"func"`
}

// BaseFile returns the base name of the frame's file.
func (f StackFrame) BaseFile() string {
	return filepath.Base(f.File)
}

// ShortFunction returns the function name without its package path,
// e.g. "github.com/acme/buf.(*Writer).Grow" => "(*Writer).Grow".
func (f StackFrame) ShortFunction() string {
	name := f.Function
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// FuncPackage returns the package path portion of the frame's function
// symbol, e.g. "github.com/acme/buf.(*Writer).Grow" => "github.com/acme/buf".
// Returns "" if the symbol carries no package qualifier.
func (f StackFrame) FuncPackage() string {
	name := f.Function
	slash := strings.LastIndex(name, "/")
	dot := strings.Index(name[slash+1:], ".")
	if dot < 0 {
		return ""
	}
	return name[:slash+1+dot]
}

// Location returns the frame's source location.
func (f StackFrame) Location() SourceLocation {
	return SourceLocation{File: f.File, Line: f.Line}
}

// String implements fmt.Stringer.
func (f StackFrame) String() string {
	return fmt.Sprintf("%s at %s:%d", f.Function, f.File, f.Line)
}

// AllocationRecord is a single sampled allocation event. The stack is
// ordered oldest-frame-first (index 0 is the outermost caller). Records
// are immutable once captured; the viewer only reads them.
type AllocationRecord struct {
	Size  uint64       `json:"size"`
	Type  string       `json:"type"`
	Stack []StackFrame `json:"stack"`
}

// SourceLocation identifies a source line. It is a comparable value type
// and is used directly as a grouping key.
type SourceLocation struct {
	File string
	Line int
}

// String implements fmt.Stringer.
func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Snapshot is a point-in-time capture of accumulated allocation samples,
// as returned by the profiling subsystem.
type Snapshot struct {
	Records    []AllocationRecord
	SampleRate float64
	TakenAt    time.Time
}

// TotalBytes returns the sum of all record sizes in the snapshot.
func (s *Snapshot) TotalBytes() uint64 {
	var total uint64
	for i := range s.Records {
		total += s.Records[i].Size
	}
	return total
}
