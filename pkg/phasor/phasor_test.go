package phasor

import (
	"math"
	"math/cmplx"
	"testing"
)

const eps = 1e-12

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFromPolar(t *testing.T) {
	tests := []struct {
		name      string
		mag       float64
		ang       Angle
		wantRe    float64
		wantIm    float64
		wantKnown bool
	}{
		{
			name:      "known angle zero",
			mag:       1.01,
			ang:       Rad(0),
			wantRe:    1.01,
			wantIm:    0,
			wantKnown: true,
		},
		{
			name:      "known angle positive",
			mag:       2,
			ang:       Rad(math.Pi / 2),
			wantRe:    0,
			wantIm:    2,
			wantKnown: true,
		},
		{
			name:      "unknown angle keeps magnitude in real part",
			mag:       1.01,
			ang:       Angle{},
			wantRe:    1.01,
			wantIm:    0,
			wantKnown: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromPolar(tt.mag, tt.ang)
			if !almostEqual(real(p.Value), tt.wantRe) || !almostEqual(imag(p.Value), tt.wantIm) {
				t.Errorf("FromPolar() = %v, want %v+%vi", p.Value, tt.wantRe, tt.wantIm)
			}
			if p.AngleKnown != tt.wantKnown {
				t.Errorf("AngleKnown = %v, want %v", p.AngleKnown, tt.wantKnown)
			}
		})
	}
}

func TestAbsArg(t *testing.T) {
	known := FromPolar(1.5, Rad(0.3))
	if got := known.Abs(); !almostEqual(got, 1.5) {
		t.Errorf("Abs() = %v, want 1.5", got)
	}
	if got := known.Arg(); !got.Known || !almostEqual(got.Radians, 0.3) {
		t.Errorf("Arg() = %+v, want known 0.3", got)
	}

	unknown := FromPolar(1.5, Angle{})
	if got := unknown.Abs(); !almostEqual(got, 1.5) {
		t.Errorf("Abs() of magnitude-only phasor = %v, want 1.5", got)
	}
	if got := unknown.Arg(); got.Known {
		t.Errorf("Arg() of magnitude-only phasor = %+v, want unknown", got)
	}
}

func TestRotate(t *testing.T) {
	p := FromPolar(1.01, Rad(0.1)).Rotate(-TwoPiOverThree)
	if got := p.Abs(); !almostEqual(got, 1.01) {
		t.Errorf("rotated Abs() = %v, want 1.01", got)
	}
	if got := p.Arg(); !almostEqual(got.Radians, 0.1-TwoPiOverThree) {
		t.Errorf("rotated Arg() = %v, want %v", got.Radians, 0.1-TwoPiOverThree)
	}

	// Rotating a magnitude-only phasor is a no-op.
	u := FromPolar(1.01, Angle{}).Rotate(TwoPiOverThree)
	if u.AngleKnown || !almostEqual(u.Abs(), 1.01) {
		t.Errorf("rotated magnitude-only phasor = %+v, want unchanged", u)
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name      string
		ps        []Phasor
		wantRe    float64
		wantIm    float64
		wantKnown bool
	}{
		{
			name: "all angles known",
			ps: []Phasor{
				FromPolar(1.01, Rad(0.1)),
				FromPolar(1.02, Rad(0.2)),
				FromPolar(1.03, Rad(0.3)),
			},
			wantRe:    (1.01*math.Cos(0.1) + 1.02*math.Cos(0.2) + 1.03*math.Cos(0.3)) / 3,
			wantIm:    (1.01*math.Sin(0.1) + 1.02*math.Sin(0.2) + 1.03*math.Sin(0.3)) / 3,
			wantKnown: true,
		},
		{
			name: "all angles unknown averages magnitudes",
			ps: []Phasor{
				FromPolar(1.01, Angle{}),
				FromPolar(1.02, Angle{}),
				FromPolar(1.03, Angle{}),
			},
			wantRe:    1.02,
			wantIm:    0,
			wantKnown: false,
		},
		{
			name:      "empty input",
			ps:        nil,
			wantRe:    0,
			wantIm:    0,
			wantKnown: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Mean(tt.ps...)
			if !almostEqual(real(m.Value), tt.wantRe) || !almostEqual(imag(m.Value), tt.wantIm) {
				t.Errorf("Mean() = %v, want %v+%vi", m.Value, tt.wantRe, tt.wantIm)
			}
			if m.AngleKnown != tt.wantKnown {
				t.Errorf("AngleKnown = %v, want %v", m.AngleKnown, tt.wantKnown)
			}
		})
	}
}

func TestPerUnit(t *testing.T) {
	if got := PerUnit(10.1e3, 10.0e3); !almostEqual(got, 1.01) {
		t.Errorf("PerUnit() = %v, want 1.01", got)
	}
	if got := PerUnitLineToGround(10.1e3/Sqrt3, 10.0e3); !almostEqual(got, 1.01) {
		t.Errorf("PerUnitLineToGround() = %v, want 1.01", got)
	}
}

func TestAngleSub(t *testing.T) {
	if got := Rad(0.3).Sub(Rad(0.1)); !got.Known || math.Abs(got.Radians-0.2) > eps {
		t.Errorf("Sub() = %+v, want known 0.2", got)
	}
	if got := Rad(0.3).Sub(Angle{}); got.Known {
		t.Errorf("Sub() with unknown operand = %+v, want unknown", got)
	}
	if got := (Angle{}).Sub(Rad(0.1)); got.Known {
		t.Errorf("Sub() on unknown angle = %+v, want unknown", got)
	}
}

func TestAngleJSON(t *testing.T) {
	b, err := Rad(0.25).MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "0.25" {
		t.Errorf("MarshalJSON() = %s, want 0.25", b)
	}

	b, err = (Angle{}).MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "null" {
		t.Errorf("MarshalJSON() of unknown = %s, want null", b)
	}

	var a Angle
	if err := a.UnmarshalJSON([]byte("null")); err != nil {
		t.Fatal(err)
	}
	if a.Known {
		t.Errorf("UnmarshalJSON(null) = %+v, want unknown", a)
	}
	if err := a.UnmarshalJSON([]byte("0.5")); err != nil {
		t.Fatal(err)
	}
	if !a.Known || a.Radians != 0.5 {
		t.Errorf("UnmarshalJSON(0.5) = %+v, want known 0.5", a)
	}
}

func TestFloatNaN(t *testing.T) {
	if got := (Angle{}).Float(); !math.IsNaN(got) {
		t.Errorf("Float() of unknown angle = %v, want NaN", got)
	}
	// A known phasor round-trips through cmplx.
	p := FromPolar(2, Rad(-0.4))
	if got := cmplx.Abs(p.Value); !almostEqual(got, 2) {
		t.Errorf("cmplx.Abs = %v, want 2", got)
	}
}
