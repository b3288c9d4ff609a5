package events

import "encoding/json"

// Event name constants
const (
	EstimationCompleted  = "estimation.completed"
	DatasetReloaded      = "dataset.reloaded"
	CalibrationSuggested = "calibration.suggested"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// EstimationCompletedEvent is the typed payload for estimation.completed.
type EstimationCompletedEvent struct {
	Nodes   int   `json:"nodes"`
	Sensors int   `json:"sensors"`
	Ts      int64 `json:"ts"`
}

// DatasetReloadedEvent is the typed payload for dataset.reloaded.
type DatasetReloadedEvent struct {
	Path    string `json:"path"`
	Nodes   int    `json:"nodes"`
	Sensors int    `json:"sensors"`
	Ts      int64  `json:"ts"`
}

// CalibrationSuggestedEvent is the typed payload for calibration.suggested.
type CalibrationSuggestedEvent struct {
	Suggestions int   `json:"suggestions"`
	Ts          int64 `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is
// empty, it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
