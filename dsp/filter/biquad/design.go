package biquad

import (
	"errors"
	"fmt"
	"math"
)

// ErrDesign is returned for filter design parameters that do not yield a
// stable, realizable section.
var ErrDesign = errors.New("biquad: invalid filter design")

// Lowpass designs a second-order lowpass at freq (Hz) with quality
// factor q, using the RBJ cookbook bilinear design.
func Lowpass(freq, q, sampleRate float64) (Coefficients, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return Coefficients{}, err
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * checkedQ(q))

	return normalize(
		(1-cw)/2, 1-cw, (1-cw)/2,
		1+alpha, -2*cw, 1-alpha,
	)
}

// Highpass designs a second-order highpass at freq (Hz) with quality
// factor q, using the RBJ cookbook bilinear design.
func Highpass(freq, q, sampleRate float64) (Coefficients, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return Coefficients{}, err
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * checkedQ(q))

	return normalize(
		(1+cw)/2, -(1 + cw), (1+cw)/2,
		1+alpha, -2*cw, 1-alpha,
	)
}

// ButterworthLowpass designs a lowpass Butterworth cascade of the given
// order. Even orders use order/2 biquad sections with the Butterworth Q
// ladder; odd orders append a first-order tail section.
func ButterworthLowpass(freq float64, order int, sampleRate float64) ([]Coefficients, error) {
	return butterworthCascade(freq, order, sampleRate, Lowpass, firstOrderLowpass)
}

// ButterworthHighpass designs a highpass Butterworth cascade of the
// given order.
func ButterworthHighpass(freq float64, order int, sampleRate float64) ([]Coefficients, error) {
	return butterworthCascade(freq, order, sampleRate, Highpass, firstOrderHighpass)
}

func butterworthCascade(
	freq float64,
	order int,
	sampleRate float64,
	second func(freq, q, sampleRate float64) (Coefficients, error),
	first func(freq, sampleRate float64) (Coefficients, error),
) ([]Coefficients, error) {
	if order <= 0 {
		return nil, fmt.Errorf("%w: order must be >= 1: %d", ErrDesign, order)
	}

	sections := make([]Coefficients, 0, (order+1)/2)

	for i := order/2 - 1; i >= 0; i-- {
		c, err := second(freq, butterworthQ(order, i), sampleRate)
		if err != nil {
			return nil, err
		}

		sections = append(sections, c)
	}

	if order%2 != 0 {
		c, err := first(freq, sampleRate)
		if err != nil {
			return nil, err
		}

		sections = append(sections, c)
	}

	return sections, nil
}

// butterworthQ returns the quality factor of biquad section index in a
// Butterworth cascade of the given order. The pole pairs sit on the unit
// circle at angles pi*(2i+1)/(2*order).
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return 1 / math.Sqrt2
	}

	return 1 / (2 * s)
}

// firstOrderLowpass designs the first-order tail section of odd-order
// lowpass cascades via the bilinear transform.
func firstOrderLowpass(freq, sampleRate float64) (Coefficients, error) {
	k, err := bilinearK(freq, sampleRate)
	if err != nil {
		return Coefficients{}, err
	}

	norm := 1 / (1 + k)

	return Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}, nil
}

// firstOrderHighpass designs the first-order tail section of odd-order
// highpass cascades via the bilinear transform.
func firstOrderHighpass(freq, sampleRate float64) (Coefficients, error) {
	k, err := bilinearK(freq, sampleRate)
	if err != nil {
		return Coefficients{}, err
	}

	norm := 1 / (1 + k)

	return Coefficients{
		B0: norm,
		B1: -norm,
		A1: (k - 1) * norm,
	}, nil
}

// bilinearK computes the frequency warping factor tan(pi*freq/sampleRate).
func bilinearK(freq, sampleRate float64) (float64, error) {
	if err := checkBand(freq, sampleRate); err != nil {
		return 0, err
	}

	return math.Tan(math.Pi * freq / sampleRate), nil
}

func normalizedW0(freq, sampleRate float64) (float64, error) {
	if err := checkBand(freq, sampleRate); err != nil {
		return 0, err
	}

	return 2 * math.Pi * freq / sampleRate, nil
}

func checkBand(freq, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate %g", ErrDesign, sampleRate)
	}

	if freq <= 0 || freq >= sampleRate/2 || math.IsNaN(freq) {
		return fmt.Errorf("%w: frequency %g Hz outside (0, %g)", ErrDesign, freq, sampleRate/2)
	}

	return nil
}

func checkedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return 1 / math.Sqrt2
	}

	return q
}

func normalize(b0, b1, b2, a0, a1, a2 float64) (Coefficients, error) {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return Coefficients{}, fmt.Errorf("%w: a0 = %g", ErrDesign, a0)
	}

	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}, nil
}
