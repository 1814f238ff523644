// Package phase provides trial-averaged phase-synchrony measures
// between channel pairs of epoched multichannel recordings.
//
// All four measures start from the instantaneous phase of the analytic
// signal and collapse the trial axis, returning one synchrony value per
// sample in [0, 1]:
//
//   - PLV: modulus of the mean phasor e^(i*dphi). Sensitive to any
//     consistent phase relation, including zero lag.
//   - iPLV: modulus of the imaginary part of the mean phasor. Blind to
//     zero-lag coupling, which removes volume-conduction artifacts.
//   - PLI: modulus of the mean sign of the phase difference. Counts only
//     the side of the lag, not its size.
//   - wPLI: imaginary cross-spectrum magnitude-weighted variant of PLI.
//     Robust against noise-driven sign flips near zero lag.
//
// # Usage
//
// Compute one measure between two channels:
//
//	plv, err := phase.Compute(phase.MethodPLV, ep, 0, 1)
//
// or call the measures directly:
//
//	wpli, err := phase.WPLI(ep, 0, 1, phase.WithZeroDenominator(phase.ZeroDenomNaN))
//
// The result is a time course: synchrony resolved at every sample of the
// epoch, not a single scalar per pair.
package phase
