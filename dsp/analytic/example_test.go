package analytic_test

import (
	"fmt"
	"math"

	"github.com/phaselab/phasesync/dsp/analytic"
)

func ExampleTransform() {
	// A periodic cosine has the analytic signal e^(i*w*t): unit envelope
	// and a phase that advances linearly.
	x := make([]float64, 64)
	for i := range x {
		x[i] = math.Cos(2 * math.Pi * 4 * float64(i) / 64)
	}

	a, err := analytic.Transform(x)
	if err != nil {
		panic(err)
	}

	env := analytic.Envelope(a)
	ph := analytic.Phase(a)

	fmt.Printf("envelope: %.3f  phase: %.3f rad\n", env[4], ph[4])

	// Output:
	// envelope: 1.000  phase: 1.571 rad
}
