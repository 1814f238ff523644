package bandpass

import (
	"errors"
	"fmt"

	"github.com/phaselab/phasesync/dsp/epochs"
	"github.com/phaselab/phasesync/dsp/filter/biquad"
)

// ErrBand is returned for band edges that do not describe a valid
// passband at the given sample rate.
var ErrBand = errors.New("bandpass: invalid band edges")

// Filter is a Butterworth bandpass applied forward-backward for zero
// phase distortion. Phase-synchrony measures live entirely in the phase
// of the signal, so a causal filter's frequency-dependent group delay
// would bias every estimate; running the cascade in both directions
// cancels the phase response and doubles the magnitude rolloff.
//
// A Filter is not safe for concurrent use; the cascade carries state
// across samples of one row.
type Filter struct {
	low   float64
	high  float64
	order int
	rate  float64
	chain *biquad.Chain
}

// Design builds a bandpass filter for the band (low, high) Hz as a
// highpass Butterworth at the low edge cascaded with a lowpass at the
// high edge, each of the given order.
func Design(low, high float64, order int, sampleRate float64) (*Filter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %g", ErrBand, sampleRate)
	}

	if low <= 0 || high <= low {
		return nil, fmt.Errorf("%w: %g-%g Hz", ErrBand, low, high)
	}

	if high >= sampleRate/2 {
		return nil, fmt.Errorf("%w: high edge %g Hz at or above Nyquist %g Hz", ErrBand, high, sampleRate/2)
	}

	hp, err := biquad.ButterworthHighpass(low, order, sampleRate)
	if err != nil {
		return nil, err
	}

	lp, err := biquad.ButterworthLowpass(high, order, sampleRate)
	if err != nil {
		return nil, err
	}

	return &Filter{
		low:   low,
		high:  high,
		order: order,
		rate:  sampleRate,
		chain: biquad.NewChain(append(hp, lp...)),
	}, nil
}

// Low returns the lower band edge in Hz.
func (f *Filter) Low() float64 { return f.low }

// High returns the upper band edge in Hz.
func (f *Filter) High() float64 { return f.high }

// Order returns the design order of each edge cascade.
func (f *Filter) Order() int { return f.order }

// SampleRate returns the design sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.rate }

// Response returns the single-pass complex frequency response at freqHz.
// The zero-phase application squares its magnitude and cancels its phase.
func (f *Filter) Response(freqHz float64) complex128 {
	return f.chain.Response(freqHz, f.rate)
}

// MagnitudeDB returns the single-pass magnitude response in dB.
func (f *Filter) MagnitudeDB(freqHz float64) float64 {
	return f.chain.MagnitudeDB(freqHz, f.rate)
}

func (f *Filter) String() string {
	return fmt.Sprintf("%g-%g Hz (order %d, zero-phase)", f.low, f.high, f.order)
}

// Apply filters every trial and channel of ep forward and backward,
// returning a new epoch set with the same shape and metadata. The input
// is never modified. Rows are processed independently; no filter state
// crosses trial or channel boundaries.
func (f *Filter) Apply(ep *epochs.Epochs) (*epochs.Epochs, error) {
	if ep.SampleRate() != f.rate {
		return nil, fmt.Errorf("%w: filter designed for %g Hz, epochs at %g Hz", ErrBand, f.rate, ep.SampleRate())
	}

	n := ep.NumSamples()
	padlen := 3 * (2*f.chain.NumSections() + 1)
	if padlen > n-1 {
		padlen = n - 1
	}

	src := ep.Data()
	ext := make([]float64, n+2*padlen)
	out := make([][][]float64, ep.NumTrials())

	for t := range out {
		out[t] = make([][]float64, ep.NumChannels())

		for c := range out[t] {
			row := make([]float64, n)
			f.filtfilt(row, src[t][c], ext, padlen)
			out[t][c] = row
		}
	}

	names := append([]string(nil), ep.ChannelNames()...)

	return epochs.New(out, ep.SampleRate(),
		epochs.WithChannelNames(names),
		epochs.WithStartTime(ep.StartTime()))
}

// filtfilt runs the cascade over one row forward and backward, writing
// the result to dst. ext is caller-provided scratch of length
// len(src) + 2*padlen. Odd reflection at both ends suppresses the
// startup transient of each pass.
func (f *Filter) filtfilt(dst, src, ext []float64, padlen int) {
	n := len(src)

	for i := 0; i < padlen; i++ {
		ext[i] = 2*src[0] - src[padlen-i]
	}

	copy(ext[padlen:], src)

	for i := 0; i < padlen; i++ {
		ext[padlen+n+i] = 2*src[n-1] - src[n-2-i]
	}

	f.chain.Reset()
	f.chain.ProcessBlock(ext)

	reverse(ext)

	f.chain.Reset()
	f.chain.ProcessBlock(ext)

	reverse(ext)

	copy(dst, ext[padlen:padlen+n])
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
