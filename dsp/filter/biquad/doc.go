// Package biquad implements second-order IIR filter sections and
// cascades in Direct Form II Transposed, plus the RBJ cookbook and
// Butterworth designs used to band-limit recordings before phase
// analysis.
//
// A Section holds one normalized second-order transfer function and its
// two delay states. A Chain cascades sections for higher-order filters;
// odd Butterworth orders end in a first-order tail section (B2 = A2 = 0).
//
// Design functions validate their parameters and return an error wrapping
// ErrDesign rather than producing a silently degenerate filter.
package biquad
