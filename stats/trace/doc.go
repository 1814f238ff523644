// Package trace aggregates per-sample synchrony traces into summary
// statistics: the distribution of a measure over the epoch, and its
// mean inside a time window of interest.
package trace
