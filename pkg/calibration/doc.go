// Package calibration estimates measurement uncertainty from residual
// history. It contains:
//
//   - Recorder: a bounded per-sensor buffer of magnitude residual samples
//   - Suggestion: a synthesized u_sigma proposal returned by HTTP APIs
//
// A sensor's configured u_sigma is a calibration parameter supplied by the
// operator; this package only suggests values, it never changes a sensor.
package calibration
