// Package psd estimates trial-averaged power spectral densities of
// epoched recordings with Welch's method.
//
// The estimate serves two purposes around phase analysis: verifying that
// a band of interest actually carries power before synchrony in that
// band is interpreted, and sanity-checking generated or imported data.
package psd
