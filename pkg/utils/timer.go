package utils

import (
	"sync"
	"time"
)

// Phase represents a single named timing phase.
type Phase struct {
	Name      string
	StartTime time.Time
	Duration  time.Duration
	completed bool
}

// Timer records named phases of a run, e.g. the stages of an
// aggregation pass. Phases are reported in start order.
type Timer struct {
	mu        sync.Mutex
	name      string
	startTime time.Time
	phases    []*Phase
	index     map[string]*Phase
}

// NewTimer creates a new Timer with the given name.
func NewTimer(name string) *Timer {
	return &Timer{
		name:      name,
		startTime: time.Now(),
		index:     make(map[string]*Phase),
	}
}

// StartPhase begins a named phase. Starting an already running phase
// restarts it.
func (t *Timer) StartPhase(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	phase, ok := t.index[name]
	if !ok {
		phase = &Phase{Name: name}
		t.index[name] = phase
		t.phases = append(t.phases, phase)
	}
	phase.StartTime = time.Now()
	phase.completed = false
}

// StopPhase ends a named phase and returns its duration. Stopping an
// unknown or already stopped phase returns 0.
func (t *Timer) StopPhase(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	phase, ok := t.index[name]
	if !ok || phase.completed {
		return 0
	}
	phase.Duration = time.Since(phase.StartTime)
	phase.completed = true
	return phase.Duration
}

// Elapsed returns the time since the timer was created.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Report logs all completed phases and the total elapsed time.
func (t *Timer) Report(logger Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, phase := range t.phases {
		if phase.completed {
			logger.Debug("%s: phase %q took %v", t.name, phase.Name, phase.Duration)
		}
	}
	logger.Debug("%s: total %v", t.name, time.Since(t.startTime))
}
