// Package phasor implements the complex-voltage arithmetic shared by all
// measurement conversions: per-unit scaling, polar construction and the
// explicit handling of measurements whose phase angle is unknown.
package phasor

import (
	"math"
	"math/cmplx"
)

const (
	// Sqrt3 converts between line-to-line and line-to-ground magnitudes.
	Sqrt3 = 1.7320508075688772935

	// TwoPiOverThree is the 120 degree shift between phases of a balanced
	// three-phase system.
	TwoPiOverThree = 2 * math.Pi / 3
)

// Phasor is a complex voltage value, normally in per-unit. When AngleKnown is
// false the real part carries the magnitude and the imaginary part must not
// be read: Abs and Arg branch on the flag instead of computing a complex
// modulus, so a known magnitude is never destroyed by an unknown angle.
type Phasor struct {
	Value      complex128
	AngleKnown bool
}

// FromPolar builds a phasor from a magnitude and an angle. An unknown angle
// yields a magnitude-only phasor.
func FromPolar(mag float64, ang Angle) Phasor {
	if !ang.Known {
		return Phasor{Value: complex(mag, 0)}
	}
	return Phasor{Value: cmplx.Rect(mag, ang.Radians), AngleKnown: true}
}

// Abs returns the magnitude. For a magnitude-only phasor this is the retained
// real part, not a complex modulus.
func (p Phasor) Abs() float64 {
	if !p.AngleKnown {
		return real(p.Value)
	}
	return cmplx.Abs(p.Value)
}

// Arg returns the phase angle, unknown for a magnitude-only phasor.
func (p Phasor) Arg() Angle {
	if !p.AngleKnown {
		return Angle{}
	}
	return Rad(cmplx.Phase(p.Value))
}

// Rotate shifts the phasor by delta radians. A magnitude-only phasor is
// returned unchanged: without a reference angle there is nothing to shift.
func (p Phasor) Rotate(delta float64) Phasor {
	if !p.AngleKnown {
		return p
	}
	return Phasor{Value: p.Value * cmplx.Rect(1, delta), AngleKnown: true}
}

// Mean averages phasors component-wise. Real parts always average; the result
// is magnitude-only as soon as any input is, because an average imaginary
// part is meaningless without every angle.
func Mean(ps ...Phasor) Phasor {
	if len(ps) == 0 {
		return Phasor{}
	}
	var sumRe, sumIm float64
	known := true
	for _, p := range ps {
		sumRe += real(p.Value)
		sumIm += imag(p.Value)
		known = known && p.AngleKnown
	}
	n := float64(len(ps))
	if !known {
		return Phasor{Value: complex(sumRe/n, 0)}
	}
	return Phasor{Value: complex(sumRe/n, sumIm/n), AngleKnown: true}
}

// PerUnit scales a physical magnitude to per-unit of the given base.
func PerUnit(magnitude, base float64) float64 {
	return magnitude / base
}

// PerUnitLineToGround scales a line-to-ground magnitude against a
// line-to-line base.
func PerUnitLineToGround(magnitude, base float64) float64 {
	return magnitude * Sqrt3 / base
}
