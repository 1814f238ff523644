package analytic

import (
	"errors"
	"fmt"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/phaselab/phasesync/dsp/epochs"
)

// ErrEmptySignal is returned when a transform input has no samples.
var ErrEmptySignal = errors.New("analytic: signal must not be empty")

// Transform computes the analytic signal of a real sequence via the
// frequency-domain Hilbert transform: the spectrum keeps DC (and Nyquist
// for even lengths) unchanged, doubles the positive frequencies, and zeros
// the negative ones. The real part of the result is the input signal; the
// imaginary part is its Hilbert transform.
//
// The construction assumes the sequence is periodic, so the first and last
// few samples carry wrap-around edge artifacts. That is inherent to the
// analytic-signal convention, not something this package corrects; callers
// should supply epochs long enough that boundary effects are negligible.
func Transform(x []float64) ([]complex128, error) {
	tr, err := newTransformer(len(x))
	if err != nil {
		return nil, err
	}

	out := make([]complex128, len(x))
	if err := tr.analytic(out, x); err != nil {
		return nil, err
	}

	return out, nil
}

// Signal computes per-trial analytic signals for one channel of ep,
// returning a [trial][sample] complex array. Trials are transformed
// independently; no state leaks across the trial axis.
func Signal(ep *epochs.Epochs, ch int) ([][]complex128, error) {
	if err := ep.CheckChannel(ch); err != nil {
		return nil, err
	}

	tr, err := newTransformer(ep.NumSamples())
	if err != nil {
		return nil, err
	}

	data := ep.Data()
	out := make([][]complex128, ep.NumTrials())

	for t := range out {
		out[t] = make([]complex128, ep.NumSamples())
		if err := tr.analytic(out[t], data[t][ch]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// CrossSpectrum computes the elementwise cross-spectrum between two
// channels: S(t, i) = A1(t, i) * conj(A2(t, i)) where A1, A2 are the
// per-trial analytic signals. Its argument is the instantaneous phase
// difference and its imaginary part drives the weighted phase-lag index.
func CrossSpectrum(ep *epochs.Epochs, ch1, ch2 int) ([][]complex128, error) {
	a1, err := Signal(ep, ch1)
	if err != nil {
		return nil, err
	}

	a2, err := Signal(ep, ch2)
	if err != nil {
		return nil, err
	}

	for t := range a1 {
		row1 := a1[t]
		row2 := a2[t]

		for i := range row1 {
			row1[i] *= cmplx.Conj(row2[i])
		}
	}

	return a1, nil
}

// Phase returns the instantaneous phase arg(a[i]) in radians for one
// analytic-signal row.
func Phase(a []complex128) []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = cmplx.Phase(v)
	}

	return out
}

// Envelope returns the instantaneous amplitude |a[i]| for one
// analytic-signal row.
func Envelope(a []complex128) []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = cmplx.Abs(v)
	}

	return out
}

// transformer holds a reusable FFT plan plus scratch space for one signal
// length. Power-of-two lengths run on the radix-2 plan; anything else goes
// through gonum's mixed-radix complex FFT. Both paths apply the same
// spectral weights, so the analytic signal is backend-independent.
type transformer struct {
	n       int
	plan    *algofft.Plan[complex128]
	cfft    *fourier.CmplxFFT
	scratch []complex128
}

func newTransformer(n int) (*transformer, error) {
	if n == 0 {
		return nil, ErrEmptySignal
	}

	tr := &transformer{n: n, scratch: make([]complex128, n)}

	if isPowerOfTwo(n) {
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("analytic: create FFT plan: %w", err)
		}

		tr.plan = plan

		return tr, nil
	}

	tr.cfft = fourier.NewCmplxFFT(n)

	return tr, nil
}

// analytic writes the analytic signal of x into dst. len(dst) == len(x) == n.
func (tr *transformer) analytic(dst []complex128, x []float64) error {
	for i, v := range x {
		dst[i] = complex(v, 0)
	}

	if tr.plan != nil {
		if err := tr.plan.Forward(tr.scratch, dst); err != nil {
			return fmt.Errorf("analytic: forward FFT failed: %w", err)
		}

		weightSpectrum(tr.scratch)

		// Plan inverse includes the 1/N normalization.
		if err := tr.plan.Inverse(dst, tr.scratch); err != nil {
			return fmt.Errorf("analytic: inverse FFT failed: %w", err)
		}

		return nil
	}

	tr.cfft.Coefficients(tr.scratch, dst)
	weightSpectrum(tr.scratch)
	tr.cfft.Sequence(dst, tr.scratch)

	// Sequence is unnormalized; scale by 1/N explicitly.
	scale := complex(1/float64(tr.n), 0)
	for i := range dst {
		dst[i] *= scale
	}

	return nil
}

// weightSpectrum applies the analytic-signal weights in place:
// h[0] = 1, h[N/2] = 1 for even N, h[k] = 2 for the remaining positive
// frequencies, h[k] = 0 for the negative frequencies.
func weightSpectrum(spec []complex128) {
	n := len(spec)
	half := n / 2

	if n%2 == 0 {
		for k := 1; k < half; k++ {
			spec[k] *= 2
		}

		for k := half + 1; k < n; k++ {
			spec[k] = 0
		}

		return
	}

	for k := 1; k <= half; k++ {
		spec[k] *= 2
	}

	for k := half + 1; k < n; k++ {
		spec[k] = 0
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
