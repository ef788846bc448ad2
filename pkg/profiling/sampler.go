package profiling

import (
	"runtime"
	"time"

	"github.com/allocview/pkg/model"
	"github.com/allocview/pkg/utils"
)

// maxEventsPerStack bounds how many allocation events a single profile
// record expands into, so a hot allocation site cannot blow up the tree.
const maxEventsPerStack = 4096

// Sampler runs workloads under the runtime's allocation profiler and
// turns the accumulated records into a snapshot.
type Sampler struct {
	logger utils.Logger
}

// NewSampler creates a Sampler.
func NewSampler(logger utils.Logger) *Sampler {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Sampler{logger: logger}
}

// Run executes fn once under allocation sampling and returns the
// snapshot of allocations it performed. The runtime's profile is
// cumulative, so Run diffs the profile around the workload; records
// already present before the run are subtracted out.
func (s *Sampler) Run(fn func(), opts Options) (*model.Snapshot, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.Warmup {
		s.logger.Debug("warm-up pass")
		fn()
	}

	oldRate := runtime.MemProfileRate
	runtime.MemProfileRate = memProfileRate(opts.SampleRate)
	defer func() { runtime.MemProfileRate = oldRate }()

	before := readProfile()
	fn()
	after := readProfile()

	snap := &model.Snapshot{
		SampleRate: opts.SampleRate,
		TakenAt:    time.Now(),
	}
	for key, cur := range after {
		base := before[key]
		objects := cur.objects - base.objects
		bytes := cur.bytes - base.bytes
		if objects <= 0 || bytes <= 0 {
			continue
		}
		snap.Records = append(snap.Records, expandEvents(cur.stack, objects, bytes, s.logger)...)
	}

	s.logger.Debug("captured %d allocation events (rate %g)", len(snap.Records), opts.SampleRate)
	return snap, nil
}

// memProfileRate converts a capture fraction to the runtime's
// bytes-per-sample profiling rate.
func memProfileRate(sampleRate float64) int {
	if sampleRate >= 1 {
		return 1
	}
	return int(1 / sampleRate)
}

type profileEntry struct {
	stack   []model.StackFrame
	objects int64
	bytes   int64
}

// readProfile flushes pending profile events and reads the accumulated
// allocation profile, keyed by raw program counters.
func readProfile() map[[32]uintptr]profileEntry {
	// The memory profile only reflects completed GC cycles; two cycles
	// flush everything allocated so far.
	runtime.GC()
	runtime.GC()

	n, _ := runtime.MemProfile(nil, true)
	records := make([]runtime.MemProfileRecord, n+64)
	n, ok := runtime.MemProfile(records, true)
	for !ok {
		records = make([]runtime.MemProfileRecord, len(records)*2)
		n, ok = runtime.MemProfile(records, true)
	}
	records = records[:n]

	out := make(map[[32]uintptr]profileEntry, len(records))
	for i := range records {
		rec := &records[i]
		entry := out[rec.Stack0]
		if entry.stack == nil {
			entry.stack = resolveFrames(rec.Stack())
		}
		entry.objects += rec.AllocObjects
		entry.bytes += rec.AllocBytes
		out[rec.Stack0] = entry
	}
	return out
}

// resolveFrames symbolizes raw program counters into stack frames,
// reordered oldest-frame-first.
func resolveFrames(pcs []uintptr) []model.StackFrame {
	frames := runtime.CallersFrames(pcs)
	var newest []model.StackFrame
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			newest = append(newest, model.StackFrame{
				File:     frame.File,
				Line:     frame.Line,
				Function: frame.Function,
			})
		}
		if !more {
			break
		}
	}

	oldest := make([]model.StackFrame, len(newest))
	for i, f := range newest {
		oldest[len(newest)-1-i] = f
	}
	return oldest
}

// expandEvents turns one aggregated profile record into individual
// allocation events of the average object size.
func expandEvents(stack []model.StackFrame, objects, bytes int64, logger utils.Logger) []model.AllocationRecord {
	if objects <= 0 {
		return nil
	}
	count := objects
	if count > maxEventsPerStack {
		logger.Debug("capping %d events from one stack at %d", objects, maxEventsPerStack)
		count = maxEventsPerStack
	}

	size := uint64(bytes / objects)
	tag := InferType(stack)
	events := make([]model.AllocationRecord, count)
	for i := range events {
		events[i] = model.AllocationRecord{
			Size:  size,
			Type:  tag,
			Stack: stack,
		}
	}
	return events
}
