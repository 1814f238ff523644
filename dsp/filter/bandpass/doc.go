// Package bandpass isolates a frequency band of epoched recordings
// before phase analysis.
//
// The filter is a Butterworth highpass at the low band edge cascaded
// with a Butterworth lowpass at the high edge, applied forward and
// backward (filtfilt) so the net phase response is exactly zero. Odd
// reflection padding at both ends keeps the startup transients of the
// two passes out of the epoch.
package bandpass
