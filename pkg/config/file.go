package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gridsense/gridsense/pkg/utils/num"
	"github.com/gridsense/gridsense/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		DatasetPath:               ptr.To("/etc/gridsense/dataset.json"),
		EstimationIntervalSeconds: ptr.To(10),
		AllowNonRootAccess:        ptr.To(false),
		// A zero sigma would give a sensor infinite weight, so calibration
		// suggestions never go below this floor (volts).
		SigmaFloor: ptr.To(0.1),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	DatasetPath               *string  `json:"datasetPath,omitempty"`
	EstimationIntervalSeconds *int     `json:"estimationIntervalSeconds,omitempty"`
	AllowNonRootAccess        *bool    `json:"allowNonRootAccess,omitempty"`
	SigmaFloor                *float64 `json:"sigmaFloor,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		DatasetPath:               ptr.To(c.DatasetPath()),
		EstimationIntervalSeconds: ptr.To(c.EstimationIntervalSeconds()),
		AllowNonRootAccess:        ptr.To(c.AllowNonRootAccess()),
		SigmaFloor:                ptr.To(c.SigmaFloor()),
	}

	return rawConfig, nil
}

func (f *File) DatasetPath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.DatasetPath != nil {
		return *f.c.DatasetPath
	}
	return *defaultFileConfig.DatasetPath
}

func (f *File) EstimationIntervalSeconds() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var interval int

	if f.c.EstimationIntervalSeconds != nil {
		interval = *f.c.EstimationIntervalSeconds
	} else {
		interval = *defaultFileConfig.EstimationIntervalSeconds
	}

	// Sub-second loops would hammer the estimator for no benefit.
	return num.Clamp(interval, 1, 3600)
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.AllowNonRootAccess != nil {
		return *f.c.AllowNonRootAccess
	}
	return *defaultFileConfig.AllowNonRootAccess
}

func (f *File) SigmaFloor() float64 {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var floor float64

	if f.c.SigmaFloor != nil {
		floor = *f.c.SigmaFloor
	} else {
		floor = *defaultFileConfig.SigmaFloor
	}

	return num.Max(floor, 0)
}

func (f *File) SetDatasetPath(p string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.DatasetPath = &p
}

func (f *File) SetEstimationIntervalSeconds(i int) {
	if f.c == nil {
		panic("config is nil")
	}

	if i <= 0 {
		panic("estimation interval must be positive")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.EstimationIntervalSeconds = &i
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AllowNonRootAccess = &b
}

func (f *File) SetSigmaFloor(v float64) {
	if f.c == nil {
		panic("config is nil")
	}

	if v < 0 {
		panic("sigma floor must not be negative")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.SigmaFloor = &v
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		// If the file is empty, return the empty config.
		// Do not make f.c a nil.
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"datasetPath":               f.DatasetPath(),
		"estimationIntervalSeconds": f.EstimationIntervalSeconds(),
		"allowNonRootAccess":        f.AllowNonRootAccess(),
		"sigmaFloor":                f.SigmaFloor(),
	}
}
