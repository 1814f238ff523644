package analytic

import (
	"testing"

	"github.com/phaselab/phasesync/internal/testutil"
)

func BenchmarkTransformPowerOfTwo(b *testing.B) {
	x := testutil.DeterministicNoise(1, 1, 1024)

	b.ResetTimer()

	for b.Loop() {
		if _, err := Transform(x); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTransformMixedRadix(b *testing.B) {
	x := testutil.DeterministicNoise(1, 1, 1000)

	b.ResetTimer()

	for b.Loop() {
		if _, err := Transform(x); err != nil {
			b.Fatal(err)
		}
	}
}
