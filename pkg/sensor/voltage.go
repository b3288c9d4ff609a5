// Package sensor implements the voltage sensor model: conversion of raw
// three-phase voltage measurements into the per-unit representation consumed
// by the estimator, and conversion of a solved voltage back into a
// sensor-referenced residual.
//
// A sensor has a fixed native mode, symmetric (one positive-sequence phasor)
// or asymmetric (three phase-to-ground phasors), but can always be queried in
// either representation.
package sensor

import (
	"math/cmplx"

	"github.com/gridsense/gridsense/pkg/phasor"
)

// SymVoltageSensorInput is the configuration of a symmetric voltage sensor.
// UMeasured is in physical volts; UAngleMeasured may be unknown.
type SymVoltageSensorInput struct {
	ID             int          `json:"id"`
	MeasuredObject int          `json:"measured_object"`
	USigma         float64      `json:"u_sigma"`
	UMeasured      float64      `json:"u_measured"`
	UAngleMeasured phasor.Angle `json:"u_angle_measured"`
}

// AsymVoltageSensorInput is the configuration of an asymmetric voltage
// sensor. Magnitudes are line-to-ground volts. Angles are all-or-nothing:
// either every phase angle is known or none is.
type AsymVoltageSensorInput struct {
	ID             int             `json:"id"`
	MeasuredObject int             `json:"measured_object"`
	USigma         float64         `json:"u_sigma"`
	UMeasured      [3]float64      `json:"u_measured"`
	UAngleMeasured [3]phasor.Angle `json:"u_angle_measured"`
}

// SymCalcParam is a measurement in symmetric representation: one per-unit
// phasor and the effective variance in per-unit squared.
type SymCalcParam struct {
	Value    phasor.Phasor
	Variance float64
}

// AsymCalcParam is a measurement in asymmetric representation: three
// per-unit phasors and the effective variance in per-unit squared. The
// variance is the sensor's native variance, identical to the symmetric view.
type AsymCalcParam struct {
	Value    [3]phasor.Phasor
	Variance float64
}

// SymOutput is the residual report in symmetric representation. UResidual is
// in physical volts; UAngleResidual is unknown when the measured angle was.
type SymOutput struct {
	ID             int          `json:"id"`
	Energized      bool         `json:"energized"`
	UResidual      float64      `json:"u_residual"`
	UAngleResidual phasor.Angle `json:"u_angle_residual"`
}

// AsymOutput is the residual report in asymmetric representation, one entry
// per phase. UResidual is in line-to-ground volts.
type AsymOutput struct {
	ID             int             `json:"id"`
	Energized      bool            `json:"energized"`
	UResidual      [3]float64      `json:"u_residual"`
	UAngleResidual [3]phasor.Angle `json:"u_angle_residual"`
}

// VoltageSensor converts between the sensor's native measurement and either
// requested representation. It is immutable after construction; every method
// is a pure function of the receiver and its arguments, so a sensor may be
// shared freely between goroutines.
type VoltageSensor struct {
	id             int
	measuredObject int
	uRated         float64
	variance       float64
	native         [3]phasor.Phasor
	asym           bool
}

// NewSym builds a symmetric voltage sensor against a rated line-to-line
// voltage. The native variance is (sigma/uRated)^2.
func NewSym(in SymVoltageSensorInput, uRated float64) *VoltageSensor {
	sigmaPU := in.USigma / uRated
	s := &VoltageSensor{
		id:             in.ID,
		measuredObject: in.MeasuredObject,
		uRated:         uRated,
		variance:       sigmaPU * sigmaPU,
	}
	s.native[0] = phasor.FromPolar(phasor.PerUnit(in.UMeasured, uRated), in.UAngleMeasured)
	return s
}

// NewAsym builds an asymmetric voltage sensor against a rated line-to-line
// voltage. Each phase magnitude is line-to-ground, hence the sqrt(3) scaling
// at ingestion. Three phase measurements contribute additively, so the native
// variance is 3*(sigma/uRated)^2 regardless of the requested representation.
func NewAsym(in AsymVoltageSensorInput, uRated float64) *VoltageSensor {
	sigmaPU := in.USigma / uRated
	s := &VoltageSensor{
		id:             in.ID,
		measuredObject: in.MeasuredObject,
		uRated:         uRated,
		variance:       3 * sigmaPU * sigmaPU,
		asym:           true,
	}
	for k := 0; k < 3; k++ {
		s.native[k] = phasor.FromPolar(phasor.PerUnitLineToGround(in.UMeasured[k], uRated), in.UAngleMeasured[k])
	}
	return s
}

// ID returns the sensor id.
func (s *VoltageSensor) ID() int { return s.id }

// MeasuredObject returns the id of the node this sensor observes. The sensor
// only stores the reference; resolving it is the topology's concern.
func (s *VoltageSensor) MeasuredObject() int { return s.measuredObject }

// URated returns the rated line-to-line voltage base in volts.
func (s *VoltageSensor) URated() float64 { return s.uRated }

// Asym reports whether the sensor's native mode is asymmetric.
func (s *VoltageSensor) Asym() bool { return s.asym }

// SymParam returns the measurement in symmetric representation. An
// asymmetric sensor is projected by averaging its three phase phasors
// component-wise.
func (s *VoltageSensor) SymParam() SymCalcParam {
	if s.asym {
		return SymCalcParam{
			Value:    phasor.Mean(s.native[0], s.native[1], s.native[2]),
			Variance: s.variance,
		}
	}
	return SymCalcParam{Value: s.native[0], Variance: s.variance}
}

// AsymParam returns the measurement in asymmetric representation. A
// symmetric sensor is replicated onto three phases assuming perfect balance;
// with an unknown native angle no shift is meaningful and all three phases
// carry the magnitude unchanged.
func (s *VoltageSensor) AsymParam() AsymCalcParam {
	if s.asym {
		return AsymCalcParam{Value: s.native, Variance: s.variance}
	}
	return AsymCalcParam{
		Value: [3]phasor.Phasor{
			s.native[0],
			s.native[0].Rotate(-phasor.TwoPiOverThree),
			s.native[0].Rotate(phasor.TwoPiOverThree),
		},
		Variance: s.variance,
	}
}

// SymOutput derives the residual against a solved symmetric voltage in
// per-unit. The energized flag is a pass-through supplied by the caller's
// topology context.
func (s *VoltageSensor) SymOutput(uCalc complex128, energized bool) SymOutput {
	meas := s.SymParam().Value
	magErr := meas.Abs() - cmplx.Abs(uCalc)
	return SymOutput{
		ID:             s.id,
		Energized:      energized,
		UResidual:      magErr * s.uRated,
		UAngleResidual: meas.Arg().Sub(phasor.Rad(cmplx.Phase(uCalc))),
	}
}

// AsymOutput derives the per-phase residuals against a solved asymmetric
// voltage in per-unit. Residuals are reported in line-to-ground volts, so the
// per-unit error converts back with uRated/sqrt(3).
func (s *VoltageSensor) AsymOutput(uCalc [3]complex128, energized bool) AsymOutput {
	meas := s.AsymParam().Value
	out := AsymOutput{ID: s.id, Energized: energized}
	for k := 0; k < 3; k++ {
		magErr := meas[k].Abs() - cmplx.Abs(uCalc[k])
		out.UResidual[k] = magErr * s.uRated / phasor.Sqrt3
		out.UAngleResidual[k] = meas[k].Arg().Sub(phasor.Rad(cmplx.Phase(uCalc[k])))
	}
	return out
}
