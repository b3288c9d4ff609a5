package client

import (
	"encoding/json"
	"fmt"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/gridsense/gridsense/pkg/calibration"
	"github.com/gridsense/gridsense/pkg/phasor"
	"github.com/gridsense/gridsense/pkg/sensor"
	"github.com/gridsense/gridsense/pkg/topology"
)

// Status mirrors the daemon's GET /status response.
type Status struct {
	Version        string `json:"version"`
	DatasetLoaded  bool   `json:"dataset_loaded"`
	Nodes          int    `json:"nodes"`
	Sensors        int    `json:"sensors"`
	LastRun        string `json:"last_run"`
	RunsLastMinute int    `json:"runs_last_minute"`
}

// SensorInfo mirrors one row of GET /sensors.
type SensorInfo struct {
	ID             int    `json:"id"`
	MeasuredObject int    `json:"measured_object"`
	Type           string `json:"type"`
}

// Phasor mirrors the daemon's wire form of a per-unit phasor.
type Phasor struct {
	UMagnitude float64      `json:"u_magnitude"`
	UAngle     phasor.Angle `json:"u_angle"`
}

// CalcParam mirrors GET /sensors/:id/param.
type CalcParam struct {
	Mode     string   `json:"mode"`
	Value    []Phasor `json:"value"`
	Variance float64  `json:"variance"`
}

// NodeSolution mirrors one row of GET /solution.
type NodeSolution struct {
	NodeID   int      `json:"node_id"`
	Observed bool     `json:"observed"`
	U        Phasor   `json:"u"`
	UAsym    []Phasor `json:"u_asym"`
}

// Outputs mirrors GET /outputs?mode=all.
type Outputs struct {
	Sym  []sensor.SymOutput  `json:"sym"`
	Asym []sensor.AsymOutput `json:"asym"`
}

func (c *Client) GetStatus() (*Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get daemon status")
	}

	var st Status
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal daemon status")
	}
	return &st, nil
}

func (c *Client) GetNodes() ([]topology.Node, error) {
	ret, err := c.Get("/nodes")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get nodes")
	}

	var nodes []topology.Node
	if err := json.Unmarshal([]byte(ret), &nodes); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal nodes")
	}
	return nodes, nil
}

func (c *Client) SetNodeEnergized(id int, energized bool) (string, error) {
	return c.Put("/nodes/"+strconv.Itoa(id)+"/energized", strconv.FormatBool(energized))
}

func (c *Client) GetSensors() ([]SensorInfo, error) {
	ret, err := c.Get("/sensors")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get sensors")
	}

	var infos []SensorInfo
	if err := json.Unmarshal([]byte(ret), &infos); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal sensors")
	}
	return infos, nil
}

// GetSensorParam fetches a sensor's calculation parameter. Mode is
// "sym" or "asym".
func (c *Client) GetSensorParam(id int, mode string) (*CalcParam, error) {
	ret, err := c.Get(fmt.Sprintf("/sensors/%d/param?mode=%s", id, mode))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get sensor %d param", id)
	}

	var p CalcParam
	if err := json.Unmarshal([]byte(ret), &p); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal sensor param")
	}
	return &p, nil
}

// RunEstimation triggers one estimation run and returns the resulting
// outputs.
func (c *Client) RunEstimation() (*Outputs, error) {
	ret, err := c.Post("/estimate", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to run estimation")
	}

	var out Outputs
	if err := json.Unmarshal([]byte(ret), &out); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal outputs")
	}
	return &out, nil
}

// GetOutputs fetches the residual outputs of the last estimation run
// in both representations.
func (c *Client) GetOutputs() (*Outputs, error) {
	ret, err := c.Get("/outputs?mode=all")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get outputs")
	}

	var out Outputs
	if err := json.Unmarshal([]byte(ret), &out); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal outputs")
	}
	return &out, nil
}

func (c *Client) GetSolution() ([]NodeSolution, error) {
	ret, err := c.Get("/solution")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get solution")
	}

	var sols []NodeSolution
	if err := json.Unmarshal([]byte(ret), &sols); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal solution")
	}
	return sols, nil
}

func (c *Client) ReloadDataset() (string, error) {
	ret, err := c.Put("/dataset", "")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to reload dataset")
	}
	return ret, nil
}

func (c *Client) GetCalibration() ([]calibration.Suggestion, error) {
	ret, err := c.Get("/calibration")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get calibration suggestions")
	}

	var suggestions []calibration.Suggestion
	if err := json.Unmarshal([]byte(ret), &suggestions); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration suggestions")
	}
	return suggestions, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	// Remove "" around JSON string. I don't want to use a JSON decoder just for this.
	ret = ret[1 : len(ret)-1] // remove the surrounding quotes
	return ret, nil
}
