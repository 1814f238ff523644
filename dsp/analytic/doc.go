// Package analytic computes analytic signals and cross-spectra for
// multi-trial epochs via the frequency-domain Hilbert transform.
//
// [Signal] transforms one channel of an epoch set into its complex
// analytic representation, one independent transform per trial.
// [CrossSpectrum] combines two channels into the per-trial, per-sample
// product A1 * conj(A2), the input to cross-spectral synchrony measures.
//
// Power-of-two epoch lengths run on a radix-2 FFT plan; all other lengths
// use gonum's mixed-radix complex FFT. The two backends produce the same
// analytic signal.
package analytic
