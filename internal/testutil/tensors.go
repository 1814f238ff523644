package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a deterministic sine trace sin(2*pi*f*t + phase)
// sampled at sampleRate.
func Sine(freqHz, sampleRate, phase float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = math.Sin(step*float64(i) + phase)
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for
// reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Tensor builds a [trials][channels][samples] tensor by evaluating fill
// at every cell.
func Tensor(trials, channels, samples int, fill func(trial, ch, i int) float64) [][][]float64 {
	data := make([][][]float64, trials)
	for t := range data {
		data[t] = make([][]float64, channels)
		for c := range data[t] {
			row := make([]float64, samples)
			for i := range row {
				row[i] = fill(t, c, i)
			}
			data[t][c] = row
		}
	}
	return data
}

// ConstantTensor builds a tensor with every sample set to value.
func ConstantTensor(trials, channels, samples int, value float64) [][][]float64 {
	return Tensor(trials, channels, samples, func(int, int, int) float64 {
		return value
	})
}
