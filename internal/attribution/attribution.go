// Package attribution decides which frame of a captured stack is
// responsible for an allocation and which sub-range of frames to show.
package attribution

import (
	"github.com/allocview/pkg/filter"
	"github.com/allocview/pkg/model"
)

// Range is a half-open window [Start, End) over an allocation's stack.
// Start is the attributing frame.
type Range struct {
	Start int
	End   int
}

// Len returns the number of frames in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Frames returns the record's frames inside the range.
func (r Range) Frames(rec *model.AllocationRecord) []model.StackFrame {
	return rec.Stack[r.Start:r.End]
}

// Attribute scans the record's stack in capture order (index 0 is the
// outermost frame) for the first frame passing the filter, then
// truncates the display range at the first instrumentation frame above
// it. The universal filter disables truncation. Returns ok=false when
// no frame matches, or when the matching frame is itself an
// instrumentation frame; such records are unattributed.
func Attribute(f *filter.Filter, rec *model.AllocationRecord) (Range, bool) {
	for i, frame := range rec.Stack {
		if !f.Match(rec, frame) {
			continue
		}
		if filter.Bottom(frame) {
			// The viewer's own wrapper frames never become visible
			// attribution points.
			return Range{}, false
		}

		end := len(rec.Stack)
		if !f.IsEverything() {
			for j := i + 1; j < len(rec.Stack); j++ {
				if filter.Bottom(rec.Stack[j]) {
					end = j
					break
				}
			}
		}
		return Range{Start: i, End: end}, true
	}
	return Range{}, false
}
