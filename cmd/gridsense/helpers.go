package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"

	"github.com/gridsense/gridsense/pkg/phasor"
)

func parseIntArg(args []string, valueName string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("invalid number of arguments")
	}

	value, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", valueName, err)
	}

	return value, nil
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

// fmtAngle renders a phase angle in radians, or a dash when the angle is
// unknown (magnitude-only measurement).
func fmtAngle(a phasor.Angle) string {
	if !a.Known {
		return "-"
	}
	return fmt.Sprintf("%+.6f", a.Radians)
}
