package psd

import (
	"errors"
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/spectral"
	"github.com/mjibson/go-dsp/window"

	"github.com/cwbudde/algo-vecmath"
	"github.com/phaselab/phasesync/dsp/epochs"
)

// ErrSegment is returned for Welch segmentation parameters that do not
// fit the epoch length.
var ErrSegment = errors.New("psd: invalid segment parameters")

// Spectrum is a trial-averaged one-sided power spectral density.
type Spectrum struct {
	Freqs []float64 // Hz, ascending from 0 to Nyquist
	Power []float64 // linear power per Hz
}

// Config defines configuration for the Welch estimator.
type Config struct {
	// SegmentLength is the per-segment FFT length. Must be even. Zero
	// selects min(256, samples) rounded down to even.
	SegmentLength int

	// Overlap is the number of shared samples between adjacent segments.
	// Zero selects the estimator default of half a segment.
	Overlap int

	// Window tapes each segment before its FFT. Defaults to Hann.
	Window func(n int) []float64
}

// Option mutates a Config.
type Option func(*Config)

// WithSegmentLength sets the per-segment FFT length.
func WithSegmentLength(n int) Option {
	return func(cfg *Config) { cfg.SegmentLength = n }
}

// WithOverlap sets the segment overlap in samples.
func WithOverlap(n int) Option {
	return func(cfg *Config) { cfg.Overlap = n }
}

// WithWindow sets the segment taper function.
func WithWindow(w func(n int) []float64) Option {
	return func(cfg *Config) {
		if w != nil {
			cfg.Window = w
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := Config{Window: window.Hann}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Welch estimates the power spectral density of one channel with
// Welch's method, averaged across trials. Each trial is segmented,
// tapered, and periodogram-averaged on its own; the trial mean then
// smooths the estimate further without growing the segment length.
func Welch(ep *epochs.Epochs, ch int, opts ...Option) (*Spectrum, error) {
	if err := ep.CheckChannel(ch); err != nil {
		return nil, err
	}

	cfg := ApplyOptions(opts...)

	seg := cfg.SegmentLength
	if seg == 0 {
		seg = ep.NumSamples()
		if seg > 256 {
			seg = 256
		}

		seg -= seg % 2
	}

	switch {
	case seg < 2 || seg%2 != 0:
		return nil, fmt.Errorf("%w: segment length %d must be even and >= 2", ErrSegment, seg)
	case seg > ep.NumSamples():
		return nil, fmt.Errorf("%w: segment length %d exceeds %d samples", ErrSegment, seg, ep.NumSamples())
	case cfg.Overlap < 0 || cfg.Overlap >= seg:
		return nil, fmt.Errorf("%w: overlap %d not in [0, %d)", ErrSegment, cfg.Overlap, seg)
	}

	pwopts := &spectral.PwelchOptions{
		NFFT:     seg,
		Noverlap: cfg.Overlap,
		Window:   cfg.Window,
	}

	data := ep.Data()

	var sum []float64

	sp := &Spectrum{}

	for t := 0; t < ep.NumTrials(); t++ {
		pxx, freqs := spectral.Pwelch(data[t][ch], ep.SampleRate(), pwopts)

		if sum == nil {
			sum = make([]float64, len(pxx))
			sp.Freqs = freqs
		}

		vecmath.AddBlockInPlace(sum, pxx)
	}

	sp.Power = make([]float64, len(sum))
	vecmath.ScaleBlock(sp.Power, sum, 1/float64(ep.NumTrials()))

	return sp, nil
}

// PowerDB returns the spectrum in decibels, flooring at -200 dB so that
// empty bins stay finite.
func (s *Spectrum) PowerDB() []float64 {
	out := make([]float64, len(s.Power))
	for i, p := range s.Power {
		if p < 1e-20 {
			p = 1e-20
		}

		out[i] = 10 * math.Log10(p)
	}

	return out
}

// Peak returns the frequency and power of the strongest bin.
func (s *Spectrum) Peak() (freq, power float64) {
	for i, p := range s.Power {
		if p > power {
			power = p
			freq = s.Freqs[i]
		}
	}

	return freq, power
}

// BandPower integrates the spectrum over [low, high] Hz.
func (s *Spectrum) BandPower(low, high float64) (float64, error) {
	if low < 0 || high <= low {
		return 0, fmt.Errorf("%w: band %g-%g Hz", ErrSegment, low, high)
	}

	if len(s.Freqs) < 2 {
		return 0, fmt.Errorf("%w: spectrum too short to integrate", ErrSegment)
	}

	df := s.Freqs[1] - s.Freqs[0]
	total := 0.0

	for i, f := range s.Freqs {
		if f >= low && f <= high {
			total += s.Power[i] * df
		}
	}

	return total, nil
}
