package daemon

import (
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/gridsense/gridsense/pkg/dataset"
	"github.com/gridsense/gridsense/pkg/estimator"
	"github.com/gridsense/gridsense/pkg/events"
)

// runState owns the loaded dataset and the result of the latest estimation
// run. All access goes through the mutex; estimation itself is pure, so the
// lock is only held for snapshot and swap.
type runState struct {
	mu      sync.RWMutex
	ds      *dataset.Dataset
	sol     *estimator.Solution
	rep     estimator.Report
	lastRun time.Time
}

func newRunState() *runState {
	return &runState{}
}

func (s *runState) loadDataset(path string) error {
	ds, err := dataset.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ds = ds
	s.sol = nil
	s.rep = estimator.Report{}
	s.mu.Unlock()

	sigmaRecorder.Clear()
	hub.Publish(events.DatasetReloaded, events.DatasetReloadedEvent{
		Path:    path,
		Nodes:   ds.Topology.Len(),
		Sensors: len(ds.Sensors),
		Ts:      time.Now().Unix(),
	})
	return nil
}

func (s *runState) dataset() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// estimate runs the estimator against the current dataset and stores the
// result.
func (s *runState) estimate() error {
	s.mu.RLock()
	ds := s.ds
	s.mu.RUnlock()

	if ds == nil {
		return pkgerrors.New("no dataset loaded")
	}

	sol := estimator.Solve(ds)
	rep := sol.Report(ds)

	s.mu.Lock()
	s.sol = sol
	s.rep = rep
	s.lastRun = time.Now()
	s.mu.Unlock()

	for _, out := range rep.Sym {
		sigmaRecorder.Observe(out.ID, out.UResidual)
	}
	if sugg := sigmaRecorder.SuggestAll(conf.SigmaFloor()); len(sugg) > 0 {
		hub.Publish(events.CalibrationSuggested, events.CalibrationSuggestedEvent{
			Suggestions: len(sugg),
			Ts:          time.Now().Unix(),
		})
	}

	hub.Publish(events.EstimationCompleted, events.EstimationCompletedEvent{
		Nodes:   ds.Topology.Len(),
		Sensors: len(ds.Sensors),
		Ts:      time.Now().Unix(),
	})
	return nil
}

func (s *runState) snapshot() (*estimator.Solution, estimator.Report, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sol, s.rep, s.lastRun
}
