// Package aggregator turns a flat snapshot of allocation records into a
// three-level tree: summary header, source-location groups, allocations
// and their visible stack frames.
package aggregator

import (
	"github.com/allocview/internal/attribution"
	"github.com/allocview/pkg/model"
)

// Payload is the content of a tree node; exactly one of Header,
// GroupEntry, Allocation or Frame.
type Payload interface {
	payloadNode()
}

// Header is the root payload carrying the aggregate summary.
type Header struct {
	Groups            int
	AttributedCount   int
	AttributedBytes   uint64
	UnattributedCount int
	UnattributedBytes uint64
}

// GroupEntry is one source-location bucket with its aggregate counts.
type GroupEntry struct {
	Location   model.SourceLocation
	Label      string
	RelPath    string
	Count      int
	TotalBytes uint64
}

// Allocation wraps one record together with its visible frame range.
// The range is the only structural state that changes after the tree is
// built: re-filter commands replace it along with the frame children.
type Allocation struct {
	Record *model.AllocationRecord
	Range  attribution.Range
}

// Frame is a single displayed stack frame. Index is the frame's
// position in the record's captured stack.
type Frame struct {
	Frame model.StackFrame
	Index int
}

func (*Header) payloadNode()     {}
func (*GroupEntry) payloadNode() {}
func (*Allocation) payloadNode() {}
func (*Frame) payloadNode()      {}

// Node is a tree node. Parents own their children; the Parent pointer
// is a non-owning back-reference. Folded is the collapsed display flag.
type Node struct {
	Parent   *Node
	Children []*Node
	Folded   bool
	Payload  Payload
}

// AddChild appends a child node and sets its parent pointer.
func (n *Node) AddChild(child *Node) *Node {
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// Tree is the aggregation result. The root carries the Header payload
// and starts unfolded one level, so group summaries are visible first.
type Tree struct {
	Root *Node
}

// Summary returns the aggregate summary carried by the root.
func (t *Tree) Summary() *Header {
	return t.Root.Payload.(*Header)
}

// Groups returns the group nodes in first-encounter order.
func (t *Tree) Groups() []*Node {
	return t.Root.Children
}
