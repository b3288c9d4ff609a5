package sensor

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/gridsense/gridsense/pkg/phasor"
)

func approx(t *testing.T, got, want, tol float64, name string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func wantKnownAngle(t *testing.T, got phasor.Angle, want float64, name string) {
	t.Helper()
	if !got.Known {
		t.Errorf("%s is unknown, want %v", name, want)
		return
	}
	if math.Abs(got.Radians-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got.Radians, want)
	}
}

func wantUnknownAngle(t *testing.T, got phasor.Angle, name string) {
	t.Helper()
	if got.Known {
		t.Errorf("%s = %v, want unknown", name, got.Radians)
	}
}

func polar(mag, ang float64) complex128 {
	return cmplx.Rect(mag, ang)
}

func TestSymSensorCalcParam(t *testing.T) {
	in := SymVoltageSensorInput{
		ID:             0,
		MeasuredObject: 1,
		USigma:         1.0,
		UMeasured:      10.1e3,
		UAngleMeasured: phasor.Rad(0),
	}
	s := NewSym(in, 10.0e3)

	sym := s.SymParam()
	approx(t, real(sym.Value.Value), 1.01, 1e-9, "sym value re")
	approx(t, imag(sym.Value.Value), 0.0, 1e-9, "sym value im")
	approx(t, sym.Variance, 1.0e-8, 1e-15, "sym variance")

	asym := s.AsymParam()
	approx(t, real(asym.Value[0].Value), 1.01, 1e-9, "asym value[0] re")
	approx(t, imag(asym.Value[0].Value), 0.0, 1e-9, "asym value[0] im")
	approx(t, asym.Value[1].Abs(), 1.01, 1e-9, "asym value[1] abs")
	wantKnownAngle(t, asym.Value[1].Arg(), -phasor.TwoPiOverThree, "asym value[1] arg")
	approx(t, asym.Value[2].Abs(), 1.01, 1e-9, "asym value[2] abs")
	wantKnownAngle(t, asym.Value[2].Arg(), phasor.TwoPiOverThree, "asym value[2] arg")
	approx(t, asym.Variance, 1.0e-8, 1e-15, "asym variance")
}

func TestSymSensorCalcParamUnknownAngle(t *testing.T) {
	in := SymVoltageSensorInput{
		ID:             0,
		MeasuredObject: 1,
		USigma:         1.0,
		UMeasured:      10.1e3,
		// UAngleMeasured left unknown
	}
	s := NewSym(in, 10.0e3)

	sym := s.SymParam()
	approx(t, real(sym.Value.Value), 1.01, 1e-9, "sym value re")
	wantUnknownAngle(t, sym.Value.Arg(), "sym value arg")
	approx(t, sym.Variance, 1.0e-8, 1e-15, "sym variance")

	// Without a reference angle, no phase shift is meaningful: every phase
	// carries the magnitude unchanged.
	asym := s.AsymParam()
	for k := 0; k < 3; k++ {
		approx(t, real(asym.Value[k].Value), 1.01, 1e-9, "asym value re")
		wantUnknownAngle(t, asym.Value[k].Arg(), "asym value arg")
	}
	approx(t, asym.Variance, 1.0e-8, 1e-15, "asym variance")
}

func TestAsymSensorCalcParam(t *testing.T) {
	in := AsymVoltageSensorInput{
		ID:             0,
		MeasuredObject: 1,
		USigma:         1.0,
		UMeasured:      [3]float64{10.1e3 / phasor.Sqrt3, 10.2e3 / phasor.Sqrt3, 10.3e3 / phasor.Sqrt3},
		UAngleMeasured: [3]phasor.Angle{
			phasor.Rad(0.1),
			phasor.Rad(-phasor.TwoPiOverThree + 0.2),
			phasor.Rad(phasor.TwoPiOverThree + 0.3),
		},
	}
	s := NewAsym(in, 10.0e3)

	asym := s.AsymParam()
	approx(t, asym.Value[0].Abs(), 1.01, 1e-9, "asym value[0] abs")
	wantKnownAngle(t, asym.Value[0].Arg(), 0.1, "asym value[0] arg")
	approx(t, asym.Value[1].Abs(), 1.02, 1e-9, "asym value[1] abs")
	wantKnownAngle(t, asym.Value[1].Arg(), -phasor.TwoPiOverThree+0.2, "asym value[1] arg")
	approx(t, asym.Value[2].Abs(), 1.03, 1e-9, "asym value[2] abs")
	wantKnownAngle(t, asym.Value[2].Arg(), phasor.TwoPiOverThree+0.3, "asym value[2] arg")
	approx(t, asym.Variance, 3.0e-8, 1e-15, "asym variance")

	// The symmetric view is the component-wise mean of the phase phasors.
	sym := s.SymParam()
	wantRe := (1.01*math.Cos(0.1) + 1.02*math.Cos(-phasor.TwoPiOverThree+0.2) + 1.03*math.Cos(phasor.TwoPiOverThree+0.3)) / 3
	wantIm := (1.01*math.Sin(0.1) + 1.02*math.Sin(-phasor.TwoPiOverThree+0.2) + 1.03*math.Sin(phasor.TwoPiOverThree+0.3)) / 3
	approx(t, real(sym.Value.Value), wantRe, 1e-9, "sym value re")
	approx(t, imag(sym.Value.Value), wantIm, 1e-9, "sym value im")
	approx(t, sym.Variance, 3.0e-8, 1e-15, "sym variance")
}

func TestAsymSensorCalcParamUnknownAngle(t *testing.T) {
	in := AsymVoltageSensorInput{
		ID:             0,
		MeasuredObject: 1,
		USigma:         1.0,
		UMeasured:      [3]float64{10.1e3 / phasor.Sqrt3, 10.2e3 / phasor.Sqrt3, 10.3e3 / phasor.Sqrt3},
	}
	s := NewAsym(in, 10.0e3)

	sym := s.SymParam()
	approx(t, real(sym.Value.Value), (1.01+1.02+1.03)/3, 1e-9, "sym value re")
	wantUnknownAngle(t, sym.Value.Arg(), "sym value arg")
	approx(t, sym.Variance, 3.0e-8, 1e-15, "sym variance")

	asym := s.AsymParam()
	for k, want := range [3]float64{1.01, 1.02, 1.03} {
		approx(t, real(asym.Value[k].Value), want, 1e-9, "asym value re")
		wantUnknownAngle(t, asym.Value[k].Arg(), "asym value arg")
	}
	approx(t, asym.Variance, 3.0e-8, 1e-15, "asym variance")
}

func TestSymSensorOutput(t *testing.T) {
	newSensor := func(angle phasor.Angle) *VoltageSensor {
		return NewSym(SymVoltageSensorInput{
			ID:             0,
			MeasuredObject: 1,
			USigma:         1.0,
			UMeasured:      10.1e3,
			UAngleMeasured: angle,
		}, 10.0e3)
	}

	uCalcSym := polar(1.02, 0.2)
	// Solved phase voltages carry their true angles, including the roughly
	// 120 degree spacing between phases.
	uCalcAsym := [3]complex128{
		polar(1.02, 0.2),
		polar(1.03, 0.3-phasor.TwoPiOverThree),
		polar(1.04, 0.4+phasor.TwoPiOverThree),
	}

	t.Run("angle 0", func(t *testing.T) {
		s := newSensor(phasor.Rad(0))

		symOut := s.SymOutput(uCalcSym, true)
		if symOut.ID != 0 || !symOut.Energized {
			t.Errorf("unexpected id/energized: %+v", symOut)
		}
		approx(t, symOut.UResidual, -100.0, 1e-6, "sym u_residual")
		wantKnownAngle(t, symOut.UAngleResidual, -0.2, "sym u_angle_residual")

		asymOut := s.AsymOutput(uCalcAsym, true)
		approx(t, asymOut.UResidual[0], -100.0/phasor.Sqrt3, 1e-6, "asym u_residual[0]")
		approx(t, asymOut.UResidual[1], -200.0/phasor.Sqrt3, 1e-6, "asym u_residual[1]")
		approx(t, asymOut.UResidual[2], -300.0/phasor.Sqrt3, 1e-6, "asym u_residual[2]")
		wantKnownAngle(t, asymOut.UAngleResidual[0], -0.2, "asym u_angle_residual[0]")
		wantKnownAngle(t, asymOut.UAngleResidual[1], -0.3, "asym u_angle_residual[1]")
		wantKnownAngle(t, asymOut.UAngleResidual[2], -0.4, "asym u_angle_residual[2]")
	})

	t.Run("angle 0.2", func(t *testing.T) {
		s := newSensor(phasor.Rad(0.2))

		symOut := s.SymOutput(uCalcSym, true)
		approx(t, symOut.UResidual, -100.0, 1e-6, "sym u_residual")
		wantKnownAngle(t, symOut.UAngleResidual, 0.0, "sym u_angle_residual")

		asymOut := s.AsymOutput(uCalcAsym, true)
		approx(t, asymOut.UResidual[0], -100.0/phasor.Sqrt3, 1e-6, "asym u_residual[0]")
		approx(t, asymOut.UResidual[1], -200.0/phasor.Sqrt3, 1e-6, "asym u_residual[1]")
		approx(t, asymOut.UResidual[2], -300.0/phasor.Sqrt3, 1e-6, "asym u_residual[2]")
		wantKnownAngle(t, asymOut.UAngleResidual[0], 0.0, "asym u_angle_residual[0]")
		wantKnownAngle(t, asymOut.UAngleResidual[1], -0.1, "asym u_angle_residual[1]")
		wantKnownAngle(t, asymOut.UAngleResidual[2], -0.2, "asym u_angle_residual[2]")
	})

	t.Run("angle unknown", func(t *testing.T) {
		s := newSensor(phasor.Angle{})

		symOut := s.SymOutput(uCalcSym, true)
		approx(t, symOut.UResidual, -100.0, 1e-6, "sym u_residual")
		wantUnknownAngle(t, symOut.UAngleResidual, "sym u_angle_residual")

		asymOut := s.AsymOutput(uCalcAsym, true)
		approx(t, asymOut.UResidual[0], -100.0/phasor.Sqrt3, 1e-6, "asym u_residual[0]")
		approx(t, asymOut.UResidual[1], -200.0/phasor.Sqrt3, 1e-6, "asym u_residual[1]")
		approx(t, asymOut.UResidual[2], -300.0/phasor.Sqrt3, 1e-6, "asym u_residual[2]")
		for k := 0; k < 3; k++ {
			wantUnknownAngle(t, asymOut.UAngleResidual[k], "asym u_angle_residual")
		}
	})
}

func TestAsymSensorOutput(t *testing.T) {
	uCalcSym := polar(1.02, 0.2)
	uCalcAsym := [3]complex128{
		polar(1.02, 0.2),
		polar(1.04, 0.4-phasor.TwoPiOverThree),
		polar(1.06, 0.6+phasor.TwoPiOverThree),
	}

	t.Run("with angle", func(t *testing.T) {
		s := NewAsym(AsymVoltageSensorInput{
			ID:             0,
			MeasuredObject: 1,
			USigma:         1.0,
			UMeasured:      [3]float64{10.1e3 / phasor.Sqrt3, 10.2e3 / phasor.Sqrt3, 10.3e3 / phasor.Sqrt3},
			UAngleMeasured: [3]phasor.Angle{
				phasor.Rad(0.1),
				phasor.Rad(0.2 - phasor.TwoPiOverThree),
				phasor.Rad(0.3 + phasor.TwoPiOverThree),
			},
		}, 10.0e3)

		// The symmetric residual is measured against the averaged phasor.
		meas := s.SymParam().Value
		symOut := s.SymOutput(uCalcSym, true)
		approx(t, symOut.UResidual, (meas.Abs()-1.02)*10.0e3, 1e-6, "sym u_residual")
		wantKnownAngle(t, symOut.UAngleResidual, meas.Arg().Radians-0.2, "sym u_angle_residual")

		asymOut := s.AsymOutput(uCalcAsym, true)
		approx(t, asymOut.UResidual[0], -100.0/phasor.Sqrt3, 1e-6, "asym u_residual[0]")
		approx(t, asymOut.UResidual[1], -200.0/phasor.Sqrt3, 1e-6, "asym u_residual[1]")
		approx(t, asymOut.UResidual[2], -300.0/phasor.Sqrt3, 1e-6, "asym u_residual[2]")
		wantKnownAngle(t, asymOut.UAngleResidual[0], -0.1, "asym u_angle_residual[0]")
		wantKnownAngle(t, asymOut.UAngleResidual[1], -0.2, "asym u_angle_residual[1]")
		wantKnownAngle(t, asymOut.UAngleResidual[2], -0.3, "asym u_angle_residual[2]")
	})

	t.Run("angle unknown", func(t *testing.T) {
		s := NewAsym(AsymVoltageSensorInput{
			ID:             0,
			MeasuredObject: 1,
			USigma:         1.0,
			UMeasured:      [3]float64{10.1e3 / phasor.Sqrt3, 10.2e3 / phasor.Sqrt3, 10.3e3 / phasor.Sqrt3},
		}, 10.0e3)

		// Mean magnitude is 1.02, exactly the solved magnitude.
		symOut := s.SymOutput(uCalcSym, true)
		approx(t, symOut.UResidual, 0.0, 1e-6, "sym u_residual")
		wantUnknownAngle(t, symOut.UAngleResidual, "sym u_angle_residual")

		asymOut := s.AsymOutput(uCalcAsym, true)
		approx(t, asymOut.UResidual[0], -100.0/phasor.Sqrt3, 1e-6, "asym u_residual[0]")
		approx(t, asymOut.UResidual[1], -200.0/phasor.Sqrt3, 1e-6, "asym u_residual[1]")
		approx(t, asymOut.UResidual[2], -300.0/phasor.Sqrt3, 1e-6, "asym u_residual[2]")
		for k := 0; k < 3; k++ {
			wantUnknownAngle(t, asymOut.UAngleResidual[k], "asym u_angle_residual")
		}
	})
}

func TestOutputRoundTrip(t *testing.T) {
	s := NewSym(SymVoltageSensorInput{
		ID:             7,
		MeasuredObject: 1,
		USigma:         0.5,
		UMeasured:      10.1e3,
		UAngleMeasured: phasor.Rad(0.15),
	}, 10.0e3)

	// Feeding a sensor its own parameter back yields zero residuals.
	symOut := s.SymOutput(s.SymParam().Value.Value, true)
	approx(t, symOut.UResidual, 0.0, 1e-9, "sym u_residual")
	wantKnownAngle(t, symOut.UAngleResidual, 0.0, "sym u_angle_residual")

	ap := s.AsymParam()
	asymOut := s.AsymOutput([3]complex128{ap.Value[0].Value, ap.Value[1].Value, ap.Value[2].Value}, true)
	for k := 0; k < 3; k++ {
		approx(t, asymOut.UResidual[k], 0.0, 1e-9, "asym u_residual")
		wantKnownAngle(t, asymOut.UAngleResidual[k], 0.0, "asym u_angle_residual")
	}
}
