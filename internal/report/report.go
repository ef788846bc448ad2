// Package report renders an aggregation tree as a machine-readable
// report, for piping results into other tools instead of the
// interactive viewer.
package report

import (
	"time"

	"github.com/allocview/internal/aggregator"
	"github.com/allocview/pkg/model"
	"github.com/allocview/pkg/writer"
)

// Report is the serializable form of an aggregation tree.
type Report struct {
	GeneratedAt       time.Time `json:"generated_at"`
	SampleRate        float64   `json:"sample_rate,omitempty"`
	Groups            int       `json:"groups"`
	AttributedCount   int       `json:"attributed_count"`
	AttributedBytes   uint64    `json:"attributed_bytes"`
	UnattributedCount int       `json:"unattributed_count,omitempty"`
	UnattributedBytes uint64    `json:"unattributed_bytes,omitempty"`
	Entries           []Group   `json:"entries"`
}

// Group is one source-location bucket.
type Group struct {
	File        string       `json:"file"`
	Line        int          `json:"line"`
	Package     string       `json:"package"`
	Count       int          `json:"count"`
	TotalBytes  uint64       `json:"total_bytes"`
	Allocations []Allocation `json:"allocations"`
}

// Allocation is one sampled allocation event with its visible frames.
type Allocation struct {
	Size  uint64  `json:"size"`
	Type  string  `json:"type,omitempty"`
	Stack []Frame `json:"stack"`
}

// Frame is one displayed stack frame.
type Frame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// FromTree flattens an aggregation tree into a report. Group order and
// allocation order within each group are preserved.
func FromTree(tree *aggregator.Tree, snap *model.Snapshot) *Report {
	summary := tree.Summary()
	rep := &Report{
		GeneratedAt:       time.Now(),
		Groups:            summary.Groups,
		AttributedCount:   summary.AttributedCount,
		AttributedBytes:   summary.AttributedBytes,
		UnattributedCount: summary.UnattributedCount,
		UnattributedBytes: summary.UnattributedBytes,
	}
	if snap != nil {
		rep.SampleRate = snap.SampleRate
	}

	for _, groupNode := range tree.Groups() {
		entry := groupNode.Payload.(*aggregator.GroupEntry)
		group := Group{
			File:       entry.Location.File,
			Line:       entry.Location.Line,
			Package:    entry.Label,
			Count:      entry.Count,
			TotalBytes: entry.TotalBytes,
		}

		for _, allocNode := range groupNode.Children {
			alloc := allocNode.Payload.(*aggregator.Allocation)
			out := Allocation{
				Size:  alloc.Record.Size,
				Type:  alloc.Record.Type,
				Stack: make([]Frame, 0, alloc.Range.Len()),
			}
			for _, frame := range alloc.Range.Frames(alloc.Record) {
				out.Stack = append(out.Stack, Frame{
					Function: frame.Function,
					File:     frame.File,
					Line:     frame.Line,
				})
			}
			group.Allocations = append(group.Allocations, out)
		}
		rep.Entries = append(rep.Entries, group)
	}
	return rep
}

// WriteFile writes the report to path as JSON, gzipped when the path
// ends in .gz.
func (r *Report) WriteFile(path string) error {
	return writer.WriteFileAuto(r, path)
}
