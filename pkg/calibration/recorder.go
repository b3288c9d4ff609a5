package calibration

import (
	"math"
	"sync"

	"github.com/gridsense/gridsense/pkg/utils/num"
)

// MinSamples is the number of residual samples needed before a suggestion is
// considered meaningful.
const MinSamples = 10

// Suggestion is a proposed u_sigma for one sensor, derived from the sample
// standard deviation of its recent magnitude residuals.
type Suggestion struct {
	SensorID int     `json:"sensor_id"`
	Samples  int     `json:"samples"`
	USigma   float64 `json:"u_sigma"`
}

// Recorder keeps the last N magnitude residuals per sensor, in physical
// volts.
type Recorder struct {
	mu      sync.Mutex
	max     int
	samples map[int][]float64
}

// NewRecorder returns a Recorder keeping at most maxSamples residuals per
// sensor.
func NewRecorder(maxSamples int) *Recorder {
	return &Recorder{
		max:     maxSamples,
		samples: map[int][]float64{},
	}
}

// Observe appends a residual sample for a sensor, evicting the oldest sample
// when the buffer is full.
func (r *Recorder) Observe(sensorID int, residual float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.samples[sensorID]
	if len(s) >= r.max {
		s = s[1:]
	}
	r.samples[sensorID] = append(s, residual)
}

// Clear drops all recorded samples.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = map[int][]float64{}
}

// Suggest returns a u_sigma proposal for a sensor. The second return is false
// until MinSamples residuals have been observed. The suggestion never goes
// below floor, because a zero sigma would give the sensor infinite weight.
func (r *Recorder) Suggest(sensorID int, floor float64) (Suggestion, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.samples[sensorID]
	if len(s) < MinSamples {
		return Suggestion{}, false
	}

	var sum float64
	for _, v := range s {
		sum += v
	}
	mean := sum / float64(len(s))

	var variance float64
	for _, v := range s {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(s) - 1)

	return Suggestion{
		SensorID: sensorID,
		Samples:  len(s),
		USigma:   num.Max(math.Sqrt(variance), floor),
	}, true
}

// SuggestAll returns suggestions for every sensor with enough samples.
func (r *Recorder) SuggestAll(floor float64) []Suggestion {
	r.mu.Lock()
	ids := make([]int, 0, len(r.samples))
	for id := range r.samples {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	var out []Suggestion
	for _, id := range ids {
		if s, ok := r.Suggest(id, floor); ok {
			out = append(out, s)
		}
	}
	return out
}
