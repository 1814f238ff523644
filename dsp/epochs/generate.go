package epochs

import (
	"fmt"
	"math"
	"math/rand"
)

// Generator builds deterministic synthetic epoch sets for demos,
// benchmarks, and tests.
type Generator struct {
	rate float64
	tmin float64
	seed int64
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRate sets the sample rate in Hz. Default is 256.
func WithRate(rate float64) GeneratorOption {
	return func(g *Generator) {
		if rate > 0 {
			g.rate = rate
		}
	}
}

// WithSeed sets the deterministic seed for noise and random phases.
func WithSeed(seed int64) GeneratorOption {
	return func(g *Generator) { g.seed = seed }
}

// WithStart sets the time of the first sample in seconds.
func WithStart(tmin float64) GeneratorOption {
	return func(g *Generator) { g.tmin = tmin }
}

// NewGenerator creates a configured epoch generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{rate: 256, seed: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Sines builds an epoch set with one sinusoidal channel per entry of lags.
// Channel k carries sin(2*pi*freqHz*t + lags[k]), identical in every trial,
// plus optional white noise of amplitude noise (deterministic per trial).
//
// A lag of pi/2 against a zero-lag reference channel gives a pure
// quarter-cycle phase offset, the canonical non-zero-lag test signal.
func (g *Generator) Sines(trials, samples int, freqHz float64, lags []float64, noise float64) (*Epochs, error) {
	if err := g.validate(trials, samples, freqHz); err != nil {
		return nil, err
	}

	if len(lags) == 0 {
		return nil, fmt.Errorf("epochs: at least one channel lag required")
	}

	if noise < 0 {
		return nil, fmt.Errorf("epochs: noise amplitude must be >= 0: %g", noise)
	}

	step := 2 * math.Pi * freqHz / g.rate
	data := make([][][]float64, trials)

	for t := range data {
		rng := rand.New(rand.NewSource(g.seed + int64(t)))
		data[t] = make([][]float64, len(lags))

		for c, lag := range lags {
			row := make([]float64, samples)
			for i := range row {
				row[i] = math.Sin(step*float64(i) + lag)
				if noise > 0 {
					row[i] += (rng.Float64()*2 - 1) * noise
				}
			}

			data[t][c] = row
		}
	}

	return New(data, g.rate, WithStartTime(g.tmin))
}

// RandomPhases builds an epoch set where every channel in every trial
// carries the same sinusoid with an independent uniform random phase in
// [0, 2*pi). Across many trials the phase relationship between any two
// channels is uniformly distributed, so all synchrony measures converge
// to zero as the trial count grows.
func (g *Generator) RandomPhases(trials, channels, samples int, freqHz float64) (*Epochs, error) {
	if err := g.validate(trials, samples, freqHz); err != nil {
		return nil, err
	}

	if channels <= 0 {
		return nil, fmt.Errorf("epochs: channels must be > 0: %d", channels)
	}

	step := 2 * math.Pi * freqHz / g.rate
	rng := rand.New(rand.NewSource(g.seed))
	data := make([][][]float64, trials)

	for t := range data {
		data[t] = make([][]float64, channels)

		for c := range data[t] {
			phase := rng.Float64() * 2 * math.Pi
			row := make([]float64, samples)

			for i := range row {
				row[i] = math.Sin(step*float64(i) + phase)
			}

			data[t][c] = row
		}
	}

	return New(data, g.rate, WithStartTime(g.tmin))
}

func (g *Generator) validate(trials, samples int, freqHz float64) error {
	if trials <= 0 {
		return fmt.Errorf("epochs: trials must be > 0: %d", trials)
	}

	if samples <= 0 {
		return fmt.Errorf("epochs: samples must be > 0: %d", samples)
	}

	if freqHz <= 0 {
		return fmt.Errorf("epochs: frequency must be > 0: %g", freqHz)
	}

	if freqHz >= g.rate/2 {
		return fmt.Errorf("epochs: frequency %g Hz exceeds Nyquist for rate %g Hz", freqHz, g.rate)
	}

	return nil
}
