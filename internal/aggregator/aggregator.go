package aggregator

import (
	"github.com/allocview/internal/attribution"
	"github.com/allocview/internal/locator"
	"github.com/allocview/pkg/filter"
	"github.com/allocview/pkg/model"
	"github.com/allocview/pkg/utils"
)

// Aggregator buckets allocation records by attributed source location
// and builds the display tree.
type Aggregator struct {
	locator locator.Locator
	logger  utils.Logger
}

// New creates an Aggregator.
func New(loc locator.Locator, logger utils.Logger) *Aggregator {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Aggregator{locator: loc, logger: logger}
}

// Build scans the snapshot and constructs the tree. Grouping always
// uses the default predicate, regardless of the display filter: the
// display filter only controls which frames are initially visible under
// each allocation. Records that the default predicate cannot attribute
// are excluded from the tree and counted in the summary.
func (a *Aggregator) Build(display *filter.Filter, snap *model.Snapshot) *Tree {
	timer := utils.NewTimer("aggregate")

	// Stale path resolutions from a previous run must not leak into a
	// fresh display.
	a.locator.Reset()

	def := filter.Default(a.locator)
	header := &Header{}

	timer.StartPhase("bucket")
	type bucket struct {
		entry   *GroupEntry
		records []*model.AllocationRecord
	}
	buckets := make(map[model.SourceLocation]*bucket)
	var order []model.SourceLocation

	for i := range snap.Records {
		rec := &snap.Records[i]
		rng, ok := attribution.Attribute(def, rec)
		if !ok {
			header.UnattributedCount++
			header.UnattributedBytes += rec.Size
			continue
		}

		key := rec.Stack[rng.Start].Location()
		b, seen := buckets[key]
		if !seen {
			resolved := a.locator.Resolve(key.File)
			b = &bucket{entry: &GroupEntry{
				Location: key,
				Label:    resolved.Label,
				RelPath:  resolved.RelPath,
			}}
			buckets[key] = b
			order = append(order, key)
		}
		b.entry.Count++
		b.entry.TotalBytes += rec.Size
		b.records = append(b.records, rec)

		header.AttributedCount++
		header.AttributedBytes += rec.Size
	}
	header.Groups = len(order)
	timer.StopPhase("bucket")

	timer.StartPhase("build")
	root := &Node{Payload: header}
	for _, key := range order {
		b := buckets[key]
		groupNode := root.AddChild(&Node{Payload: b.entry, Folded: true})
		for _, rec := range b.records {
			alloc := &Allocation{Record: rec}
			allocNode := groupNode.AddChild(&Node{Payload: alloc, Folded: true})
			RebuildFrames(allocNode, display)
		}
	}
	timer.StopPhase("build")
	timer.Report(a.logger)

	a.logger.Debug("aggregated %d records into %d groups (%d unattributed)",
		len(snap.Records), header.Groups, header.UnattributedCount)

	return &Tree{Root: root}
}

// RebuildFrames recomputes an allocation node's visible frame range and
// replaces its frame children. It touches nothing outside the node: the
// operation is idempotent and leaves siblings and ancestors unchanged.
// Calling it on a non-allocation node is a programming error.
func RebuildFrames(node *Node, f *filter.Filter) {
	alloc, ok := node.Payload.(*Allocation)
	if !ok {
		panic("aggregator: RebuildFrames on non-allocation node")
	}

	rng, attributed := attribution.Attribute(f, alloc.Record)
	if !attributed {
		rng = attribution.Range{}
	}
	alloc.Range = rng

	node.Children = node.Children[:0]
	for i := rng.Start; i < rng.End; i++ {
		node.AddChild(&Node{
			Payload: &Frame{Frame: alloc.Record.Stack[i], Index: i},
			Folded:  true,
		})
	}
}
