package profiling

import (
	"os"
	"time"

	"github.com/google/pprof/profile"

	apperrors "github.com/allocview/pkg/errors"
	"github.com/allocview/pkg/model"
	"github.com/allocview/pkg/utils"
)

// LoadFile reads a heap profile in pprof format and converts its
// samples into allocation records. Allocation sample types are
// preferred; in-use types are the fallback for profiles that carry
// nothing else.
func LoadFile(path string, logger utils.Logger) (*model.Snapshot, error) {
	if logger == nil {
		logger = &utils.NullLogger{}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProfileError, "cannot open profile", err)
	}
	defer f.Close()

	prof, err := profile.Parse(f)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProfileError, "cannot parse profile", err)
	}
	return FromProfile(prof, logger)
}

// FromProfile converts a parsed pprof profile into a snapshot.
func FromProfile(prof *profile.Profile, logger utils.Logger) (*model.Snapshot, error) {
	objIdx, byteIdx, err := sampleIndexes(prof)
	if err != nil {
		return nil, err
	}

	snap := &model.Snapshot{
		SampleRate: rateFromPeriod(prof.Period),
		TakenAt:    time.Unix(0, prof.TimeNanos),
	}
	for _, sample := range prof.Sample {
		stack := sampleStack(sample)
		if len(stack) == 0 {
			continue
		}
		objects := sample.Value[objIdx]
		bytes := sample.Value[byteIdx]
		snap.Records = append(snap.Records, expandEvents(stack, objects, bytes, logger)...)
	}

	if len(snap.Records) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeEmptyProfile, "profile has no allocation samples", nil)
	}
	logger.Debug("loaded %d allocation events from profile", len(snap.Records))
	return snap, nil
}

// sampleIndexes finds the object-count and byte-count value columns.
func sampleIndexes(prof *profile.Profile) (objIdx, byteIdx int, err error) {
	find := func(name string) int {
		for i, st := range prof.SampleType {
			if st.Type == name {
				return i
			}
		}
		return -1
	}

	if o, b := find("alloc_objects"), find("alloc_space"); o >= 0 && b >= 0 {
		return o, b, nil
	}
	if o, b := find("inuse_objects"), find("inuse_space"); o >= 0 && b >= 0 {
		return o, b, nil
	}
	return 0, 0, apperrors.New(apperrors.CodeProfileError, "not a heap profile: no allocation sample types")
}

func rateFromPeriod(period int64) float64 {
	if period <= 1 {
		return 1
	}
	return 1 / float64(period)
}

// sampleStack converts a pprof sample's locations into stack frames
// ordered oldest-frame-first. Locations are recorded leaf-first, and
// inlined line entries within a location are callee-first.
func sampleStack(sample *profile.Sample) []model.StackFrame {
	var stack []model.StackFrame
	for li := len(sample.Location) - 1; li >= 0; li-- {
		loc := sample.Location[li]
		for ln := len(loc.Line) - 1; ln >= 0; ln-- {
			line := loc.Line[ln]
			if line.Function == nil {
				continue
			}
			stack = append(stack, model.StackFrame{
				File:     line.Function.Filename,
				Line:     int(line.Line),
				Function: line.Function.Name,
			})
		}
	}
	return stack
}
