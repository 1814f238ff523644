package phase_test

import (
	"fmt"
	"math"

	"github.com/phaselab/phasesync/dsp/epochs"
	"github.com/phaselab/phasesync/measure/phase"
)

func ExampleCompute() {
	// Three sinusoidal channels: ch0 and ch1 in phase, ch2 shifted by a
	// quarter cycle. PLV sees both couplings, iPLV only the lagged one.
	gen := epochs.NewGenerator(epochs.WithRate(256))
	ep, err := gen.Sines(8, 256, 10, []float64{0, 0, math.Pi / 2}, 0)
	if err != nil {
		panic(err)
	}

	mid := ep.NumSamples() / 2
	names := ep.ChannelNames()
	for _, pair := range [][2]int{{0, 1}, {0, 2}} {
		plv, err := phase.Compute(phase.MethodPLV, ep, pair[0], pair[1])
		if err != nil {
			panic(err)
		}
		iplv, err := phase.Compute(phase.MethodIPLV, ep, pair[0], pair[1])
		if err != nil {
			panic(err)
		}

		fmt.Printf("%s-%s: plv=%.2f iplv=%.2f\n",
			names[pair[0]], names[pair[1]], plv[mid], iplv[mid])
	}

	// Output:
	// ch0-ch1: plv=1.00 iplv=0.00
	// ch0-ch2: plv=1.00 iplv=1.00
}

func ExampleParseMethod() {
	m, err := phase.ParseMethod("wPLI")
	if err != nil {
		panic(err)
	}

	fmt.Println(m, "-", m.Label())

	// Output:
	// wpli - Weighted Phase-Lag Index (wPLI)
}
