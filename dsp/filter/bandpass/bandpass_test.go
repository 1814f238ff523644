package bandpass

import (
	"errors"
	"math"
	"testing"

	"github.com/phaselab/phasesync/dsp/epochs"
	"github.com/phaselab/phasesync/dsp/filter/biquad"
	"github.com/phaselab/phasesync/internal/testutil"
)

const filterRate = 256.0

func designBand(t *testing.T, low, high float64, order int) *Filter {
	t.Helper()

	f, err := Design(low, high, order, filterRate)
	if err != nil {
		t.Fatalf("Design(%g, %g, %d): %v", low, high, order, err)
	}

	return f
}

func sineTensor(freqs []float64, trials, samples int) [][][]float64 {
	return testutil.Tensor(trials, 1, samples, func(trial, _, i int) float64 {
		sum := 0.0
		for _, freq := range freqs {
			sum += math.Sin(2 * math.Pi * freq * float64(i) / filterRate)
		}

		return sum
	})
}

func TestDesignValidation(t *testing.T) {
	tests := []struct {
		name      string
		low, high float64
		order     int
		rate      float64
		want      error
	}{
		{"zero low", 0, 12, 4, filterRate, ErrBand},
		{"inverted edges", 12, 8, 4, filterRate, ErrBand},
		{"equal edges", 10, 10, 4, filterRate, ErrBand},
		{"high at nyquist", 8, filterRate / 2, 4, filterRate, ErrBand},
		{"zero rate", 8, 12, 4, 0, ErrBand},
		{"zero order", 8, 12, 0, filterRate, biquad.ErrDesign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Design(tt.low, tt.high, tt.order, tt.rate); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDesignAccessors(t *testing.T) {
	f := designBand(t, 8, 12, 4)

	if f.Low() != 8 || f.High() != 12 || f.Order() != 4 || f.SampleRate() != filterRate {
		t.Fatalf("accessors: %g-%g order %d rate %g", f.Low(), f.High(), f.Order(), f.SampleRate())
	}
	if got, want := f.String(), "8-12 Hz (order 4, zero-phase)"; got != want {
		t.Fatalf("String: got %q, want %q", got, want)
	}
}

func TestResponseShape(t *testing.T) {
	f := designBand(t, 8, 12, 4)

	center := math.Sqrt(8 * 12)
	if db := f.MagnitudeDB(center); db < -1 {
		t.Fatalf("center %v dB, want near 0", db)
	}
	if db := f.MagnitudeDB(2); db > -30 {
		t.Fatalf("low stopband %v dB, want < -30", db)
	}
	if db := f.MagnitudeDB(60); db > -30 {
		t.Fatalf("high stopband %v dB, want < -30", db)
	}
}

func TestApplyPassbandPreserved(t *testing.T) {
	// A sine well inside a wide band must come through with amplitude
	// and phase intact: zero-phase filtering leaves no shift.
	data := sineTensor([]float64{15}, 2, 512)
	want := append([]float64(nil), data[0][0]...)

	ep, err := epochs.New(data, filterRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	filtered, err := designBand(t, 5, 40, 4).Apply(ep)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, _ := filtered.Channel(0, 0)
	lo, hi := 64, 448
	testutil.RequireSliceNearlyEqual(t, got[lo:hi], want[lo:hi], 0.03)
}

func TestApplyStopbandRejected(t *testing.T) {
	data := sineTensor([]float64{64}, 1, 512)

	ep, err := epochs.New(data, filterRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	filtered, err := designBand(t, 5, 40, 4).Apply(ep)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, _ := filtered.Channel(0, 0)
	testutil.RequireAllNear(t, got[64:448], 0, 0.05)
}

func TestApplySeparatesMixedComponents(t *testing.T) {
	mixed := sineTensor([]float64{15, 64}, 1, 512)
	pure := sineTensor([]float64{15}, 1, 512)

	ep, err := epochs.New(mixed, filterRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	filtered, err := designBand(t, 5, 40, 4).Apply(ep)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, _ := filtered.Channel(0, 0)
	testutil.RequireSliceNearlyEqual(t, got[64:448], pure[0][0][64:448], 0.07)
}

func TestApplyPreservesMetadataAndInput(t *testing.T) {
	data := sineTensor([]float64{10}, 2, 256)
	original := append([]float64(nil), data[1][0]...)

	ep, err := epochs.New(data, filterRate,
		epochs.WithChannelNames([]string{"Cz"}),
		epochs.WithStartTime(-0.5))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	filtered, err := designBand(t, 8, 12, 4).Apply(ep)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if filtered.NumTrials() != 2 || filtered.NumChannels() != 1 || filtered.NumSamples() != 256 {
		t.Fatalf("shape changed: %dx%dx%d", filtered.NumTrials(), filtered.NumChannels(), filtered.NumSamples())
	}
	if filtered.SampleRate() != filterRate || filtered.StartTime() != -0.5 {
		t.Fatalf("metadata: rate %g start %g", filtered.SampleRate(), filtered.StartTime())
	}
	if filtered.ChannelNames()[0] != "Cz" {
		t.Fatalf("names: %v", filtered.ChannelNames())
	}

	// Input rows must be untouched.
	testutil.RequireSliceNearlyEqual(t, data[1][0], original, 0)
}

func TestApplyTrialsIndependent(t *testing.T) {
	// Two trials with identical rows must filter identically regardless
	// of what the other trials contain.
	data := testutil.Tensor(3, 1, 256, func(trial, _, i int) float64 {
		if trial == 1 {
			return float64(i % 7)
		}

		return math.Sin(2 * math.Pi * 10 * float64(i) / filterRate)
	})

	ep, err := epochs.New(data, filterRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	filtered, err := designBand(t, 8, 12, 4).Apply(ep)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	first, _ := filtered.Channel(0, 0)
	third, _ := filtered.Channel(2, 0)

	diff, err := testutil.MaxAbsDiff(first, third)
	if err != nil {
		t.Fatalf("MaxAbsDiff: %v", err)
	}
	if diff != 0 {
		t.Fatalf("identical trials filtered differently: %v", diff)
	}
}

func TestApplyRateMismatch(t *testing.T) {
	data := sineTensor([]float64{10}, 1, 64)

	ep, err := epochs.New(data, 500)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := designBand(t, 8, 12, 4).Apply(ep); !errors.Is(err, ErrBand) {
		t.Fatalf("got %v, want ErrBand", err)
	}
}

func TestApplyShortEpoch(t *testing.T) {
	// Epochs shorter than the nominal padding still filter; the padding
	// is capped at n-1.
	data := sineTensor([]float64{10}, 1, 16)

	ep, err := epochs.New(data, filterRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	filtered, err := designBand(t, 8, 12, 2).Apply(ep)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, _ := filtered.Channel(0, 0)
	testutil.RequireFinite(t, got)
}
