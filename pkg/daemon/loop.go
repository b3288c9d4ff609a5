package daemon

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	loopRecorder = NewRunRecorder(60)
)

// RunRecorder records the last N estimation run times.
type RunRecorder struct {
	MaxRecordCount int
	LastRunTimes   []time.Time
	mu             *sync.Mutex
}

// NewRunRecorder returns a new RunRecorder.
func NewRunRecorder(maxRecordCount int) *RunRecorder {
	return &RunRecorder{
		MaxRecordCount: maxRecordCount,
		LastRunTimes:   make([]time.Time, 0),
		mu:             &sync.Mutex{},
	}
}

// AddRecordNow adds a new record with the current time.
func (r *RunRecorder) AddRecordNow() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.LastRunTimes) >= r.MaxRecordCount {
		r.LastRunTimes = r.LastRunTimes[1:]
	}
	// Round to strip monotonic clock reading, so time.Since stays accurate
	// across system suspend.
	r.LastRunTimes = append(r.LastRunTimes, time.Now().Round(0))
}

// ClearRecords clears all records.
func (r *RunRecorder) ClearRecords() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.LastRunTimes = make([]time.Time, 0)
}

// GetRecordsIn returns the number of runs within the last duration.
func (r *RunRecorder) GetRecordsIn(last time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, t := range r.LastRunTimes {
		if time.Since(t) <= last {
			count++
		}
	}
	return count
}

// LastRun returns the most recent run time, zero when no run happened yet.
func (r *RunRecorder) LastRun() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.LastRunTimes) == 0 {
		return time.Time{}
	}
	return r.LastRunTimes[len(r.LastRunTimes)-1]
}

// infiniteLoop re-runs the estimation until stop is closed. The interval is
// re-read every tick so a config reload takes effect without a restart.
func infiniteLoop(stop <-chan struct{}) {
	for {
		interval := time.Duration(conf.EstimationIntervalSeconds()) * time.Second
		select {
		case <-stop:
			return
		case <-time.After(interval):
		}

		if err := state.estimate(); err != nil {
			logrus.Debugf("skipping estimation run: %v", err)
			continue
		}
		loopRecorder.AddRecordNow()
	}
}
