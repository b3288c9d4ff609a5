// Package estimator fuses the voltage measurements of a dataset into one
// solved voltage per node, by weighted least squares over each node's
// sensors. It is an observation-fusion estimator, not a network state
// estimator: nodes are solved independently and no admittances are involved.
package estimator

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gridsense/gridsense/pkg/dataset"
	"github.com/gridsense/gridsense/pkg/phasor"
	"github.com/gridsense/gridsense/pkg/sensor"
)

// NodeSolution is the solved voltage of one node, in per-unit. Observed is
// false when no sensor measures the node; U and UAsym are zero in that case.
type NodeSolution struct {
	NodeID   int
	Observed bool
	U        complex128
	UAsym    [3]complex128
}

// Solution maps node ids to their solved voltages.
type Solution struct {
	Nodes map[int]NodeSolution
}

type observation struct {
	value  complex128
	weight float64
}

// Solve computes the per-node weighted least squares voltage in both
// representations.
func Solve(ds *dataset.Dataset) *Solution {
	byNode := map[int][]*sensor.VoltageSensor{}
	for _, s := range ds.Sensors {
		byNode[s.MeasuredObject()] = append(byNode[s.MeasuredObject()], s)
	}

	sol := &Solution{Nodes: map[int]NodeSolution{}}
	for _, id := range ds.Topology.IDs() {
		sensors := byNode[id]
		ns := NodeSolution{NodeID: id}
		if len(sensors) > 0 {
			ns.Observed = true
			ns.U = fuseSym(sensors)
			ns.UAsym = fuseAsym(sensors)
		}
		sol.Nodes[id] = ns
	}
	return sol
}

func fuseSym(sensors []*sensor.VoltageSensor) complex128 {
	var obs []observation
	var magSum, weightSum float64
	for _, s := range sensors {
		p := s.SymParam()
		w := 1 / p.Variance
		if p.Value.AngleKnown {
			obs = append(obs, observation{value: p.Value.Value, weight: w})
		}
		magSum += p.Value.Abs() * w
		weightSum += w
	}
	if len(obs) == 0 {
		// Only magnitude information: weighted mean magnitude at the
		// reference angle.
		return complex(magSum/weightSum, 0)
	}
	return solveWLS(obs)
}

func fuseAsym(sensors []*sensor.VoltageSensor) [3]complex128 {
	var u [3]complex128
	for k := 0; k < 3; k++ {
		var obs []observation
		var magSum, weightSum float64
		for _, s := range sensors {
			p := s.AsymParam()
			w := 1 / p.Variance
			if p.Value[k].AngleKnown {
				obs = append(obs, observation{value: p.Value[k].Value, weight: w})
			}
			magSum += p.Value[k].Abs() * w
			weightSum += w
		}
		if len(obs) == 0 {
			u[k] = complex(magSum/weightSum, 0)
			continue
		}
		u[k] = solveWLS(obs)
	}
	return u
}

// solveWLS solves the weighted least squares problem for one complex unknown
// observed directly by every sensor. Each observation contributes one row per
// component, scaled by the square root of its weight.
func solveWLS(obs []observation) complex128 {
	n := len(obs)
	a := mat.NewDense(2*n, 2, nil)
	b := mat.NewVecDense(2*n, nil)
	for i, o := range obs {
		sw := math.Sqrt(o.weight)
		a.Set(2*i, 0, sw)
		b.SetVec(2*i, sw*real(o.value))
		a.Set(2*i+1, 1, sw)
		b.SetVec(2*i+1, sw*imag(o.value))
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		// The design matrix is diagonal with positive entries; this cannot
		// happen with validated inputs.
		return 0
	}
	return complex(x.AtVec(0), x.AtVec(1))
}

// Report collects the residual outputs of every sensor against the solution,
// with the energized flag taken from the topology.
type Report struct {
	Sym  []sensor.SymOutput
	Asym []sensor.AsymOutput
}

// Report derives residual outputs for all sensors in the dataset.
func (sol *Solution) Report(ds *dataset.Dataset) Report {
	var rep Report
	for _, s := range ds.Sensors {
		ns := sol.Nodes[s.MeasuredObject()]
		energized := ds.Topology.Energized(s.MeasuredObject())
		rep.Sym = append(rep.Sym, s.SymOutput(ns.U, energized))
		rep.Asym = append(rep.Asym, s.AsymOutput(ns.UAsym, energized))
	}
	return rep
}

// BalancedAsym spreads a symmetric voltage onto three balanced phases. Useful
// when a caller needs an asymmetric view of a symmetric-only solution.
func BalancedAsym(u complex128) [3]complex128 {
	p := phasor.Phasor{Value: u, AngleKnown: true}
	return [3]complex128{
		u,
		p.Rotate(-phasor.TwoPiOverThree).Value,
		p.Rotate(phasor.TwoPiOverThree).Value,
	}
}
