package phase

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-vecmath"
	"github.com/phaselab/phasesync/dsp/analytic"
	"github.com/phaselab/phasesync/dsp/epochs"
)

// ZeroDenomPolicy selects the wPLI value reported at samples where the
// imaginary cross-spectrum vanishes across every trial, leaving the
// normalization denominator zero.
type ZeroDenomPolicy int

const (
	// ZeroDenomZero reports 0 at degenerate samples. This is the default:
	// zero imaginary power means no observable lag either way.
	ZeroDenomZero ZeroDenomPolicy = iota

	// ZeroDenomNaN reports NaN at degenerate samples so that downstream
	// consumers can distinguish "no lag" from "undefined".
	ZeroDenomNaN
)

// Config defines configuration for the synchrony measures.
type Config struct {
	ZeroDenom ZeroDenomPolicy
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{ZeroDenom: ZeroDenomZero}
}

// WithZeroDenominator sets the wPLI zero-denominator policy.
func WithZeroDenominator(p ZeroDenomPolicy) Option {
	return func(cfg *Config) {
		cfg.ZeroDenom = p
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Compute evaluates the given synchrony measure between two channels and
// returns one value per sample in [0, 1]. Unknown methods are an error,
// never a silent fallback to a default measure.
func Compute(m Method, ep *epochs.Epochs, ch1, ch2 int, opts ...Option) ([]float64, error) {
	switch m {
	case MethodPLV:
		return PLV(ep, ch1, ch2)
	case MethodIPLV:
		return IPLV(ep, ch1, ch2)
	case MethodPLI:
		return PLI(ep, ch1, ch2)
	case MethodWPLI:
		return WPLI(ep, ch1, ch2, opts...)
	default:
		return nil, ErrUnknownMethod
	}
}

// PLV computes the phase locking value between two channels: the modulus
// of the trial-averaged unit phasor e^(i*dphi). 1 means the phase
// difference is identical across trials, 0 means it is uniformly spread.
func PLV(ep *epochs.Epochs, ch1, ch2 int) ([]float64, error) {
	a1, a2, err := analyticPair(ep, ch1, ch2)
	if err != nil {
		return nil, err
	}

	n := ep.NumSamples()
	sumCos := make([]float64, n)
	sumSin := make([]float64, n)
	rowCos := make([]float64, n)
	rowSin := make([]float64, n)
	diff := make([]float64, n)

	for t := range a1 {
		phaseDifferenceRow(diff, a1[t], a2[t])

		for i, d := range diff {
			s, c := math.Sincos(d)
			rowCos[i] = c
			rowSin[i] = s
		}

		vecmath.AddBlockInPlace(sumCos, rowCos)
		vecmath.AddBlockInPlace(sumSin, rowSin)
	}

	out := make([]float64, n)
	vecmath.Magnitude(out, sumCos, sumSin)
	vecmath.ScaleBlock(out, out, 1/float64(ep.NumTrials()))

	return out, nil
}

// IPLV computes the imaginary phase locking value: the modulus of the
// imaginary part of the trial-averaged phasor. Zero-lag synchrony has a
// purely real phasor, so iPLV suppresses it and with it the most common
// volume-conduction artifact.
func IPLV(ep *epochs.Epochs, ch1, ch2 int) ([]float64, error) {
	a1, a2, err := analyticPair(ep, ch1, ch2)
	if err != nil {
		return nil, err
	}

	n := ep.NumSamples()
	sumSin := make([]float64, n)
	rowSin := make([]float64, n)
	diff := make([]float64, n)

	for t := range a1 {
		phaseDifferenceRow(diff, a1[t], a2[t])

		for i, d := range diff {
			rowSin[i] = math.Sin(d)
		}

		vecmath.AddBlockInPlace(sumSin, rowSin)
	}

	out := make([]float64, n)
	inv := 1 / float64(ep.NumTrials())

	for i, v := range sumSin {
		out[i] = math.Abs(v) * inv
	}

	return out, nil
}

// PLI computes the phase-lag index: the modulus of the trial-averaged
// sign of the phase difference. Only the side of the lag counts, so a
// consistent lead or lag gives 1 regardless of its size, and exact
// zero differences contribute nothing.
func PLI(ep *epochs.Epochs, ch1, ch2 int) ([]float64, error) {
	a1, a2, err := analyticPair(ep, ch1, ch2)
	if err != nil {
		return nil, err
	}

	n := ep.NumSamples()
	sumSign := make([]float64, n)
	rowSign := make([]float64, n)
	diff := make([]float64, n)

	for t := range a1 {
		phaseDifferenceRow(diff, a1[t], a2[t])

		for i, d := range diff {
			rowSign[i] = sign(d)
		}

		vecmath.AddBlockInPlace(sumSign, rowSign)
	}

	out := make([]float64, n)
	inv := 1 / float64(ep.NumTrials())

	for i, v := range sumSign {
		out[i] = math.Abs(v) * inv
	}

	return out, nil
}

// WPLI computes the weighted phase-lag index from the cross-spectrum
// S = A1 * conj(A2): |sum Im(S)| / sum |Im(S)| per sample across trials.
// Trials with a large imaginary component dominate, which makes wPLI far
// less sensitive to noise-driven sign flips around zero lag than PLI.
//
// The weighted numerator |Im(S)|*sign(Im(S)) reduces to Im(S), so the
// ratio is computed from plain imaginary parts. Samples where every
// trial has Im(S) == 0 follow the configured ZeroDenomPolicy.
func WPLI(ep *epochs.Epochs, ch1, ch2 int, opts ...Option) ([]float64, error) {
	cfg := ApplyOptions(opts...)

	cross, err := analytic.CrossSpectrum(ep, ch1, ch2)
	if err != nil {
		return nil, err
	}

	n := ep.NumSamples()
	num := make([]float64, n)
	den := make([]float64, n)
	rowIm := make([]float64, n)
	rowAbs := make([]float64, n)

	for t := range cross {
		for i, s := range cross[t] {
			im := imag(s)
			rowIm[i] = im
			rowAbs[i] = math.Abs(im)
		}

		vecmath.AddBlockInPlace(num, rowIm)
		vecmath.AddBlockInPlace(den, rowAbs)
	}

	degenerate := 0.0
	if cfg.ZeroDenom == ZeroDenomNaN {
		degenerate = math.NaN()
	}

	out := make([]float64, n)

	for i := range out {
		if den[i] == 0 {
			out[i] = degenerate
			continue
		}

		out[i] = math.Abs(num[i]) / den[i]
	}

	return out, nil
}

// analyticPair returns the per-trial analytic signals of both channels.
func analyticPair(ep *epochs.Epochs, ch1, ch2 int) ([][]complex128, [][]complex128, error) {
	a1, err := analytic.Signal(ep, ch1)
	if err != nil {
		return nil, nil, err
	}

	a2, err := analytic.Signal(ep, ch2)
	if err != nil {
		return nil, nil, err
	}

	return a1, a2, nil
}

// phaseDifferenceRow fills dst with the raw instantaneous phase
// difference of one trial. The difference stays unwrapped: the phasor
// e^(i*dphi) is 2*pi-periodic and the sign test only needs the side.
func phaseDifferenceRow(dst []float64, a1, a2 []complex128) {
	for i := range dst {
		dst[i] = cmplx.Phase(a1[i]) - cmplx.Phase(a2[i])
	}
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
