package config

import "github.com/sirupsen/logrus"

type Config interface {
	DatasetPath() string
	EstimationIntervalSeconds() int
	AllowNonRootAccess() bool
	SigmaFloor() float64

	SetDatasetPath(string)
	SetEstimationIntervalSeconds(int)
	SetAllowNonRootAccess(bool)
	SetSigmaFloor(float64)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}
