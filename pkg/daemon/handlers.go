package daemon

import (
	"fmt"
	"io"
	"math/cmplx"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gridsense/gridsense/pkg/phasor"
	"github.com/gridsense/gridsense/pkg/sensor"
	"github.com/gridsense/gridsense/pkg/version"
)

// Status is the view model returned by GET /status.
type Status struct {
	Version        string    `json:"version"`
	DatasetLoaded  bool      `json:"dataset_loaded"`
	Nodes          int       `json:"nodes"`
	Sensors        int       `json:"sensors"`
	LastRun        time.Time `json:"last_run"`
	RunsLastMinute int       `json:"runs_last_minute"`
}

// SensorInfo is one row of GET /sensors.
type SensorInfo struct {
	ID             int    `json:"id"`
	MeasuredObject int    `json:"measured_object"`
	Type           string `json:"type"`
}

// PhasorView is the wire form of a per-unit phasor.
type PhasorView struct {
	UMagnitude float64      `json:"u_magnitude"`
	UAngle     phasor.Angle `json:"u_angle"`
}

// CalcParamView is the wire form of a calc parameter in either mode.
type CalcParamView struct {
	Mode     string       `json:"mode"`
	Value    []PhasorView `json:"value"`
	Variance float64      `json:"variance"`
}

// NodeSolutionView is the wire form of one solved node voltage.
type NodeSolutionView struct {
	NodeID   int          `json:"node_id"`
	Observed bool         `json:"observed"`
	U        PhasorView   `json:"u"`
	UAsym    []PhasorView `json:"u_asym"`
}

// OutputsView bundles both residual representations for GET /outputs.
type OutputsView struct {
	Sym  []sensor.SymOutput  `json:"sym"`
	Asym []sensor.AsymOutput `json:"asym"`
}

func phasorView(u complex128) PhasorView {
	return PhasorView{
		UMagnitude: cmplx.Abs(u),
		UAngle:     phasor.Rad(cmplx.Phase(u)),
	}
}

func paramPhasorView(p phasor.Phasor) PhasorView {
	return PhasorView{UMagnitude: p.Abs(), UAngle: p.Arg()}
}

func getStatus(c *gin.Context) {
	ds := state.dataset()
	_, _, lastRun := state.snapshot()

	st := Status{
		Version:        version.Version,
		DatasetLoaded:  ds != nil,
		LastRun:        lastRun,
		RunsLastMinute: loopRecorder.GetRecordsIn(time.Minute),
	}
	if ds != nil {
		st.Nodes = ds.Topology.Len()
		st.Sensors = len(ds.Sensors)
	}
	c.IndentedJSON(http.StatusOK, st)
}

func getNodes(c *gin.Context) {
	ds := state.dataset()
	if ds == nil {
		c.IndentedJSON(http.StatusServiceUnavailable, "no dataset loaded")
		return
	}

	nodes := make([]any, 0, ds.Topology.Len())
	for _, id := range ds.Topology.IDs() {
		n, _ := ds.Topology.Get(id)
		nodes = append(nodes, n)
	}
	c.IndentedJSON(http.StatusOK, nodes)
}

func setNodeEnergized(c *gin.Context) {
	ds := state.dataset()
	if ds == nil {
		c.IndentedJSON(http.StatusServiceUnavailable, "no dataset loaded")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	var energized bool
	if err := c.BindJSON(&energized); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if err := ds.Topology.SetEnergized(id, energized); err != nil {
		c.IndentedJSON(http.StatusNotFound, err.Error())
		_ = c.AbortWithError(http.StatusNotFound, err)
		return
	}

	logrus.Infof("set node %d energized to %v", id, energized)
	c.IndentedJSON(http.StatusOK, "ok")
}

func getSensors(c *gin.Context) {
	ds := state.dataset()
	if ds == nil {
		c.IndentedJSON(http.StatusServiceUnavailable, "no dataset loaded")
		return
	}

	infos := make([]SensorInfo, 0, len(ds.Sensors))
	for _, s := range ds.Sensors {
		typ := "sym_voltage"
		if s.Asym() {
			typ = "asym_voltage"
		}
		infos = append(infos, SensorInfo{
			ID:             s.ID(),
			MeasuredObject: s.MeasuredObject(),
			Type:           typ,
		})
	}
	c.IndentedJSON(http.StatusOK, infos)
}

func findSensor(c *gin.Context) *sensor.VoltageSensor {
	ds := state.dataset()
	if ds == nil {
		c.IndentedJSON(http.StatusServiceUnavailable, "no dataset loaded")
		return nil
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return nil
	}

	for _, s := range ds.Sensors {
		if s.ID() == id {
			return s
		}
	}

	err = fmt.Errorf("unknown sensor id %d", id)
	c.IndentedJSON(http.StatusNotFound, err.Error())
	_ = c.AbortWithError(http.StatusNotFound, err)
	return nil
}

func getSensorParam(c *gin.Context) {
	s := findSensor(c)
	if s == nil {
		return
	}

	switch mode := c.DefaultQuery("mode", "sym"); mode {
	case "sym":
		p := s.SymParam()
		c.IndentedJSON(http.StatusOK, CalcParamView{
			Mode:     mode,
			Value:    []PhasorView{paramPhasorView(p.Value)},
			Variance: p.Variance,
		})
	case "asym":
		p := s.AsymParam()
		c.IndentedJSON(http.StatusOK, CalcParamView{
			Mode: mode,
			Value: []PhasorView{
				paramPhasorView(p.Value[0]),
				paramPhasorView(p.Value[1]),
				paramPhasorView(p.Value[2]),
			},
			Variance: p.Variance,
		})
	default:
		err := fmt.Errorf("unknown mode %q, want sym or asym", mode)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
	}
}

func runEstimation(c *gin.Context) {
	if err := state.estimate(); err != nil {
		c.IndentedJSON(http.StatusServiceUnavailable, err.Error())
		_ = c.AbortWithError(http.StatusServiceUnavailable, err)
		return
	}
	loopRecorder.AddRecordNow()
	getOutputs(c)
}

func getOutputs(c *gin.Context) {
	sol, rep, _ := state.snapshot()
	if sol == nil {
		c.IndentedJSON(http.StatusServiceUnavailable, "no estimation run yet")
		return
	}

	switch mode := c.DefaultQuery("mode", "all"); mode {
	case "sym":
		c.IndentedJSON(http.StatusOK, rep.Sym)
	case "asym":
		c.IndentedJSON(http.StatusOK, rep.Asym)
	case "all":
		c.IndentedJSON(http.StatusOK, OutputsView{Sym: rep.Sym, Asym: rep.Asym})
	default:
		err := fmt.Errorf("unknown mode %q, want sym, asym or all", mode)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
	}
}

func getSolution(c *gin.Context) {
	sol, _, _ := state.snapshot()
	ds := state.dataset()
	if sol == nil || ds == nil {
		c.IndentedJSON(http.StatusServiceUnavailable, "no estimation run yet")
		return
	}

	views := make([]NodeSolutionView, 0, len(sol.Nodes))
	for _, id := range ds.Topology.IDs() {
		ns := sol.Nodes[id]
		v := NodeSolutionView{NodeID: id, Observed: ns.Observed}
		if ns.Observed {
			v.U = phasorView(ns.U)
			v.UAsym = []PhasorView{
				phasorView(ns.UAsym[0]),
				phasorView(ns.UAsym[1]),
				phasorView(ns.UAsym[2]),
			}
		}
		views = append(views, v)
	}
	c.IndentedJSON(http.StatusOK, views)
}

func reloadDataset(c *gin.Context) {
	if err := state.loadDataset(conf.DatasetPath()); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	logrus.Infof("dataset reloaded from %s", conf.DatasetPath())
	c.IndentedJSON(http.StatusOK, "ok")
}

func getCalibration(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, sigmaRecorder.SuggestAll(conf.SigmaFloor()))
}

func getEvents(c *gin.Context) {
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
