// Package dataset loads and validates the JSON input describing a measured
// network: nodes plus the voltage sensors attached to them. Validation
// happens here, once, so the sensor model itself never has to re-check its
// inputs.
package dataset

import (
	"encoding/json"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gridsense/gridsense/pkg/sensor"
	"github.com/gridsense/gridsense/pkg/topology"
)

// File is the on-disk shape of a dataset.
type File struct {
	Nodes              []topology.Node                  `json:"nodes"`
	SymVoltageSensors  []sensor.SymVoltageSensorInput   `json:"sym_voltage_sensors"`
	AsymVoltageSensors []sensor.AsymVoltageSensorInput  `json:"asym_voltage_sensors"`
}

// Dataset is a validated dataset: the node registry plus the constructed
// sensors, each bound to its node's rated voltage.
type Dataset struct {
	Topology *topology.Registry
	Sensors  []*sensor.VoltageSensor
}

// Load reads, validates and builds a dataset from a JSON file.
func Load(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read dataset %s", path)
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to parse dataset %s", path)
	}

	ds, err := Build(&f)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid dataset %s", path)
	}

	logrus.WithFields(logrus.Fields{
		"nodes":   ds.Topology.Len(),
		"sensors": len(ds.Sensors),
	}).Info("dataset loaded")

	return ds, nil
}

// Build validates the raw records and constructs the dataset.
func Build(f *File) (*Dataset, error) {
	reg := topology.NewRegistry()
	for _, n := range f.Nodes {
		if n.URated <= 0 {
			return nil, pkgerrors.Errorf("node %d: u_rated must be positive, got %v", n.ID, n.URated)
		}
		if err := reg.Add(n); err != nil {
			return nil, err
		}
	}

	ds := &Dataset{Topology: reg}
	seen := map[int]bool{}

	for _, in := range f.SymVoltageSensors {
		node, err := checkSensor(reg, seen, in.ID, in.MeasuredObject, in.USigma)
		if err != nil {
			return nil, err
		}
		if in.UMeasured < 0 {
			return nil, pkgerrors.Errorf("sensor %d: u_measured must not be negative, got %v", in.ID, in.UMeasured)
		}
		ds.Sensors = append(ds.Sensors, sensor.NewSym(in, node.URated))
	}

	for _, in := range f.AsymVoltageSensors {
		node, err := checkSensor(reg, seen, in.ID, in.MeasuredObject, in.USigma)
		if err != nil {
			return nil, err
		}
		known := 0
		for k, m := range in.UMeasured {
			if m < 0 {
				return nil, pkgerrors.Errorf("sensor %d: u_measured[%d] must not be negative, got %v", in.ID, k, m)
			}
			if in.UAngleMeasured[k].Known {
				known++
			}
		}
		// Angle information is all-or-nothing per sensor.
		if known != 0 && known != 3 {
			return nil, pkgerrors.Errorf("sensor %d: %d of 3 phase angles given, want all or none", in.ID, known)
		}
		ds.Sensors = append(ds.Sensors, sensor.NewAsym(in, node.URated))
	}

	return ds, nil
}

func checkSensor(reg *topology.Registry, seen map[int]bool, id, measuredObject int, sigma float64) (topology.Node, error) {
	if seen[id] {
		return topology.Node{}, pkgerrors.Errorf("duplicate sensor id %d", id)
	}
	seen[id] = true
	if sigma <= 0 {
		return topology.Node{}, pkgerrors.Errorf("sensor %d: u_sigma must be positive, got %v", id, sigma)
	}
	node, ok := reg.Get(measuredObject)
	if !ok {
		return topology.Node{}, pkgerrors.Errorf("sensor %d: measured object %d does not exist", id, measuredObject)
	}
	return node, nil
}
