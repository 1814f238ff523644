package epochs

import (
	"math"
	"testing"

	"github.com/phaselab/phasesync/internal/testutil"
)

func TestSinesShapeAndValues(t *testing.T) {
	gen := NewGenerator(epochOpts()...)

	ep, err := gen.Sines(3, 128, 10, []float64{0, math.Pi / 2}, 0)
	if err != nil {
		t.Fatalf("Sines: %v", err)
	}

	if ep.NumTrials() != 3 || ep.NumChannels() != 2 || ep.NumSamples() != 128 {
		t.Fatalf("shape: got %dx%dx%d", ep.NumTrials(), ep.NumChannels(), ep.NumSamples())
	}
	if ep.SampleRate() != 256 {
		t.Fatalf("rate: got %v", ep.SampleRate())
	}

	// Noiseless trials carry the exact lagged sinusoid, identical per trial.
	want := testutil.Sine(10, 256, math.Pi/2, 128)
	for trial := 0; trial < ep.NumTrials(); trial++ {
		row, err := ep.Channel(trial, 1)
		if err != nil {
			t.Fatalf("Channel: %v", err)
		}
		testutil.RequireSliceNearlyEqual(t, row, want, 1e-12)
	}
}

func TestSinesDeterministicPerSeed(t *testing.T) {
	first, err := NewGenerator(WithSeed(3)).Sines(2, 64, 10, []float64{0, 1}, 0.5)
	if err != nil {
		t.Fatalf("Sines: %v", err)
	}

	second, err := NewGenerator(WithSeed(3)).Sines(2, 64, 10, []float64{0, 1}, 0.5)
	if err != nil {
		t.Fatalf("Sines: %v", err)
	}

	other, err := NewGenerator(WithSeed(4)).Sines(2, 64, 10, []float64{0, 1}, 0.5)
	if err != nil {
		t.Fatalf("Sines: %v", err)
	}

	for trial := 0; trial < 2; trial++ {
		a, _ := first.Channel(trial, 0)
		b, _ := second.Channel(trial, 0)
		c, _ := other.Channel(trial, 0)

		diff, err := testutil.MaxAbsDiff(a, b)
		if err != nil {
			t.Fatalf("MaxAbsDiff: %v", err)
		}
		if diff != 0 {
			t.Fatalf("trial %d: same seed differs by %v", trial, diff)
		}

		diff, err = testutil.MaxAbsDiff(a, c)
		if err != nil {
			t.Fatalf("MaxAbsDiff: %v", err)
		}
		if diff == 0 {
			t.Fatalf("trial %d: different seeds produced identical noise", trial)
		}
	}
}

func TestSinesTrialNoiseIndependent(t *testing.T) {
	ep, err := NewGenerator().Sines(2, 64, 10, []float64{0}, 0.5)
	if err != nil {
		t.Fatalf("Sines: %v", err)
	}

	a, _ := ep.Channel(0, 0)
	b, _ := ep.Channel(1, 0)

	diff, err := testutil.MaxAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MaxAbsDiff: %v", err)
	}
	if diff == 0 {
		t.Fatalf("noisy trials should differ")
	}
}

func TestSinesValidation(t *testing.T) {
	gen := NewGenerator()

	tests := []struct {
		name string
		call func() error
	}{
		{"zero trials", func() error { _, err := gen.Sines(0, 64, 10, []float64{0}, 0); return err }},
		{"zero samples", func() error { _, err := gen.Sines(1, 0, 10, []float64{0}, 0); return err }},
		{"zero freq", func() error { _, err := gen.Sines(1, 64, 0, []float64{0}, 0); return err }},
		{"above nyquist", func() error { _, err := gen.Sines(1, 64, 200, []float64{0}, 0); return err }},
		{"no lags", func() error { _, err := gen.Sines(1, 64, 10, nil, 0); return err }},
		{"negative noise", func() error { _, err := gen.Sines(1, 64, 10, []float64{0}, -1); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRandomPhases(t *testing.T) {
	ep, err := NewGenerator(WithSeed(11)).RandomPhases(5, 3, 64, 10)
	if err != nil {
		t.Fatalf("RandomPhases: %v", err)
	}

	if ep.NumTrials() != 5 || ep.NumChannels() != 3 || ep.NumSamples() != 64 {
		t.Fatalf("shape: got %dx%dx%d", ep.NumTrials(), ep.NumChannels(), ep.NumSamples())
	}

	// Phases are drawn independently, so two channels of one trial differ.
	a, _ := ep.Channel(0, 0)
	b, _ := ep.Channel(0, 1)

	diff, err := testutil.MaxAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MaxAbsDiff: %v", err)
	}
	if diff == 0 {
		t.Fatalf("channels share a phase draw")
	}

	if _, err := NewGenerator().RandomPhases(1, 0, 64, 10); err == nil {
		t.Fatalf("expected error for zero channels")
	}
}

func epochOpts() []GeneratorOption {
	return []GeneratorOption{WithRate(256), WithSeed(1), WithStart(0)}
}
