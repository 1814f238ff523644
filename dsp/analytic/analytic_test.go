package analytic

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/phaselab/phasesync/dsp/epochs"
	"github.com/phaselab/phasesync/internal/testutil"
)

// quadratureCase picks a frequency bin that divides the length evenly, so
// the sinusoid is exactly periodic and the analytic signal is exact.
type quadratureCase struct {
	name string
	n    int
	bin  int
}

func quadratureCases() []quadratureCase {
	return []quadratureCase{
		{"power of two", 64, 4},
		{"even mixed radix", 60, 5},
		{"odd mixed radix", 63, 3},
	}
}

func TestTransformPreservesRealPart(t *testing.T) {
	for _, tc := range quadratureCases() {
		t.Run(tc.name, func(t *testing.T) {
			x := testutil.DeterministicNoise(42, 1, tc.n)

			a, err := Transform(x)
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}

			re := make([]float64, tc.n)
			for i, v := range a {
				re[i] = real(v)
			}
			testutil.RequireSliceNearlyEqual(t, re, x, 1e-9)
		})
	}
}

func TestTransformQuadrature(t *testing.T) {
	// The Hilbert transform of cos is sin, so the analytic signal of a
	// periodic cosine is exactly e^(i*w*t) on every backend.
	for _, tc := range quadratureCases() {
		t.Run(tc.name, func(t *testing.T) {
			x := make([]float64, tc.n)
			wantIm := make([]float64, tc.n)
			for i := range x {
				arg := 2 * math.Pi * float64(tc.bin) * float64(i) / float64(tc.n)
				x[i] = math.Cos(arg)
				wantIm[i] = math.Sin(arg)
			}

			a, err := Transform(x)
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}

			im := make([]float64, tc.n)
			for i, v := range a {
				im[i] = imag(v)
			}
			testutil.RequireSliceNearlyEqual(t, im, wantIm, 1e-9)

			testutil.RequireAllNear(t, Envelope(a), 1, 1e-9)
		})
	}
}

func TestTransformDC(t *testing.T) {
	x := []float64{2.5, 2.5, 2.5, 2.5, 2.5, 2.5, 2.5, 2.5}

	a, err := Transform(x)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	for i, v := range a {
		if math.Abs(real(v)-2.5) > 1e-12 || math.Abs(imag(v)) > 1e-12 {
			t.Fatalf("index %d: got %v, want (2.5+0i)", i, v)
		}
	}
}

func TestTransformEmpty(t *testing.T) {
	if _, err := Transform(nil); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("got %v, want ErrEmptySignal", err)
	}
	if _, err := Transform([]float64{}); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("got %v, want ErrEmptySignal", err)
	}
}

func TestSignalPerTrial(t *testing.T) {
	ep, err := epochs.NewGenerator(epochs.WithRate(256), epochs.WithSeed(9)).
		Sines(3, 64, 8, []float64{0, 1}, 0.3)
	if err != nil {
		t.Fatalf("Sines: %v", err)
	}

	rows, err := Signal(ep, 1)
	if err != nil {
		t.Fatalf("Signal: %v", err)
	}

	if len(rows) != ep.NumTrials() {
		t.Fatalf("trials: got %d, want %d", len(rows), ep.NumTrials())
	}

	for trial, row := range rows {
		if len(row) != ep.NumSamples() {
			t.Fatalf("trial %d: samples %d, want %d", trial, len(row), ep.NumSamples())
		}

		// Each trial must match a standalone transform of its own data.
		raw, _ := ep.Channel(trial, 1)
		want, err := Transform(raw)
		if err != nil {
			t.Fatalf("Transform: %v", err)
		}

		for i := range row {
			if row[i] != want[i] {
				t.Fatalf("trial %d index %d: got %v, want %v", trial, i, row[i], want[i])
			}
		}
	}
}

func TestSignalChannelOutOfRange(t *testing.T) {
	ep, err := epochs.NewGenerator().Sines(1, 32, 8, []float64{0}, 0)
	if err != nil {
		t.Fatalf("Sines: %v", err)
	}

	if _, err := Signal(ep, 3); !errors.Is(err, epochs.ErrChannelRange) {
		t.Fatalf("got %v, want ErrChannelRange", err)
	}
}

func TestCrossSpectrumConstantLag(t *testing.T) {
	// Periodic sines with a pi/3 offset: arg(S) is the phase difference
	// -pi/3 at every sample, and |S| is the product of unit envelopes.
	ep, err := epochs.NewGenerator(epochs.WithRate(64)).
		Sines(2, 64, 4, []float64{0, math.Pi / 3}, 0)
	if err != nil {
		t.Fatalf("Sines: %v", err)
	}

	cross, err := CrossSpectrum(ep, 0, 1)
	if err != nil {
		t.Fatalf("CrossSpectrum: %v", err)
	}

	for trial, row := range cross {
		for i, s := range row {
			if math.Abs(cmplx.Phase(s)+math.Pi/3) > 1e-9 {
				t.Fatalf("trial %d index %d: arg %v, want %v", trial, i, cmplx.Phase(s), -math.Pi/3)
			}
			if math.Abs(cmplx.Abs(s)-1) > 1e-9 {
				t.Fatalf("trial %d index %d: |S| %v, want 1", trial, i, cmplx.Abs(s))
			}
		}
	}
}

func TestCrossSpectrumSelfIsReal(t *testing.T) {
	ep, err := epochs.NewGenerator(epochs.WithSeed(3)).Sines(2, 48, 8, []float64{0.4}, 0.2)
	if err != nil {
		t.Fatalf("Sines: %v", err)
	}

	cross, err := CrossSpectrum(ep, 0, 0)
	if err != nil {
		t.Fatalf("CrossSpectrum: %v", err)
	}

	// A * conj(A) = |A|^2: the imaginary part cancels exactly.
	for trial, row := range cross {
		for i, s := range row {
			if imag(s) != 0 {
				t.Fatalf("trial %d index %d: imag %v, want exact 0", trial, i, imag(s))
			}
			if real(s) < 0 {
				t.Fatalf("trial %d index %d: negative power %v", trial, i, real(s))
			}
		}
	}
}

func TestPhaseAndEnvelope(t *testing.T) {
	a := []complex128{1, 1i, -1, -2i, 3 + 4i}

	testutil.RequireSliceNearlyEqual(t, Phase(a),
		[]float64{0, math.Pi / 2, math.Pi, -math.Pi / 2, math.Atan2(4, 3)}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, Envelope(a),
		[]float64{1, 1, 1, 2, 5}, 1e-12)
}
