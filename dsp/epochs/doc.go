// Package epochs provides the multi-trial signal tensor that all phase
// analysis operates on.
//
// An [Epochs] value wraps a rectangular [trial][channel][sample] tensor
// together with channel names, the sample rate, and the time of the first
// sample. Construction validates the shape once; downstream packages can
// then index channels without re-checking rectangularity.
//
// The package also ships a deterministic [Generator] for synthetic epoch
// sets (fixed or random inter-channel phase lags, optional noise) and a
// long-format CSV interchange codec ([ReadCSV], [WriteCSV]) used by the
// command-line tools.
package epochs
