package phasor

import (
	"encoding/json"
	"math"
)

// Angle is a phase angle in radians with an explicit unknown state. Magnitude
// sensors that cannot report phase mark their angle unknown; downstream code
// branches on Known instead of relying on NaN arithmetic.
type Angle struct {
	Radians float64
	Known   bool
}

// Rad returns a known angle of r radians.
func Rad(r float64) Angle {
	return Angle{Radians: r, Known: true}
}

// Sub returns a-b. The result is unknown if either side is unknown.
func (a Angle) Sub(b Angle) Angle {
	if !a.Known || !b.Known {
		return Angle{}
	}
	return Rad(a.Radians - b.Radians)
}

// Float returns the angle in radians, or NaN when the angle is unknown.
func (a Angle) Float() float64 {
	if !a.Known {
		return math.NaN()
	}
	return a.Radians
}

// MarshalJSON encodes an unknown angle as null. JSON cannot carry NaN, so
// null is the wire-level sentinel.
func (a Angle) MarshalJSON() ([]byte, error) {
	if !a.Known {
		return []byte("null"), nil
	}
	return json.Marshal(a.Radians)
}

// UnmarshalJSON accepts a number or null. An absent field decodes to the zero
// Angle, which is unknown as well.
func (a *Angle) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = Angle{}
		return nil
	}
	var r float64
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	if math.IsNaN(r) {
		*a = Angle{}
		return nil
	}
	*a = Rad(r)
	return nil
}
