package trace

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Errors returned by trace summarization.
var (
	ErrEmpty  = errors.New("trace: no finite samples to summarize")
	ErrWindow = errors.New("trace: invalid time window")
)

// Summary describes the distribution of one synchrony trace.
type Summary struct {
	Count   int // finite samples included
	Dropped int // NaN samples excluded

	Mean   float64
	Median float64
	Min    float64
	Max    float64
	StdDev float64
	Q25    float64
	Q75    float64
}

// Summarize computes distribution statistics over a synchrony trace.
// NaN samples are excluded and counted in Dropped: under the NaN
// zero-denominator policy a wPLI trace may carry undefined samples,
// and those must not poison the aggregate.
func Summarize(values []float64) (Summary, error) {
	finite := make([]float64, 0, len(values))
	dropped := 0

	for _, v := range values {
		if math.IsNaN(v) {
			dropped++
			continue
		}

		finite = append(finite, v)
	}

	if len(finite) == 0 {
		return Summary{Dropped: dropped}, ErrEmpty
	}

	sum := Summary{Count: len(finite), Dropped: dropped}

	var err error

	if sum.Mean, err = stats.Mean(finite); err != nil {
		return Summary{}, fmt.Errorf("trace: mean: %w", err)
	}

	if sum.Median, err = stats.Median(finite); err != nil {
		return Summary{}, fmt.Errorf("trace: median: %w", err)
	}

	if sum.Min, err = stats.Min(finite); err != nil {
		return Summary{}, fmt.Errorf("trace: min: %w", err)
	}

	if sum.Max, err = stats.Max(finite); err != nil {
		return Summary{}, fmt.Errorf("trace: max: %w", err)
	}

	if sum.StdDev, err = stats.StandardDeviation(finite); err != nil {
		return Summary{}, fmt.Errorf("trace: stddev: %w", err)
	}

	if sum.Q25, err = stats.Percentile(finite, 25); err != nil {
		return Summary{}, fmt.Errorf("trace: q25: %w", err)
	}

	if sum.Q75, err = stats.Percentile(finite, 75); err != nil {
		return Summary{}, fmt.Errorf("trace: q75: %w", err)
	}

	return sum, nil
}

// MeanInWindow averages the trace over sample times in [from, to]
// seconds. NaN samples inside the window are excluded. times must be
// parallel to values, as returned by the epoch Times accessor.
func MeanInWindow(values, times []float64, from, to float64) (float64, error) {
	if len(values) != len(times) {
		return 0, fmt.Errorf("%w: %d values, %d times", ErrWindow, len(values), len(times))
	}

	if to <= from {
		return 0, fmt.Errorf("%w: [%g, %g]", ErrWindow, from, to)
	}

	selected := make([]float64, 0, len(values))

	for i, tm := range times {
		if tm < from || tm > to || math.IsNaN(values[i]) {
			continue
		}

		selected = append(selected, values[i])
	}

	if len(selected) == 0 {
		return 0, fmt.Errorf("%w: window [%g, %g] contains no finite samples", ErrEmpty, from, to)
	}

	mean, err := stats.Mean(selected)
	if err != nil {
		return 0, fmt.Errorf("trace: mean: %w", err)
	}

	return mean, nil
}
