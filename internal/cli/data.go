package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/phaselab/phasesync/dsp/epochs"
	"github.com/phaselab/phasesync/internal/config"
	"github.com/phaselab/phasesync/internal/session"
)

// loadEpochs reads an epoch CSV from disk.
func loadEpochs(path string) (*epochs.Epochs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open epochs", err)
	}
	defer f.Close()

	ep, err := epochs.ReadCSV(f)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("read %s", path), err)
	}

	return ep, nil
}

// resolveBand turns a --band value into filter edges. It accepts a
// preset name from the config ("alpha") or explicit edges in Hz
// ("8,12"). Empty input keeps the broadband view.
func resolveBand(cfg *config.Config, spec string) (low, high float64, banded bool, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0, false, nil
	}

	if lowStr, highStr, ok := strings.Cut(spec, ","); ok {
		low, err = strconv.ParseFloat(strings.TrimSpace(lowStr), 64)
		if err != nil {
			return 0, 0, false, fmt.Errorf("cli: band edge %q: %w", lowStr, err)
		}

		high, err = strconv.ParseFloat(strings.TrimSpace(highStr), 64)
		if err != nil {
			return 0, 0, false, fmt.Errorf("cli: band edge %q: %w", highStr, err)
		}

		return low, high, true, nil
	}

	b, err := cfg.Band(spec)
	if err != nil {
		return 0, 0, false, err
	}

	return b.Low, b.High, true, nil
}

// resolvePairs parses explicit pair specs, or enumerates every
// unordered channel pair when none are given.
func resolvePairs(ep *epochs.Epochs, specs []string) ([]session.Pair, error) {
	if len(specs) == 0 {
		names := ep.ChannelNames()

		var pairs []session.Pair

		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				pairs = append(pairs, session.Pair{Ch1: names[i], Ch2: names[j]})
			}
		}

		if len(pairs) == 0 {
			return nil, errors.New("cli: need at least two channels to enumerate pairs")
		}

		return pairs, nil
	}

	pairs := make([]session.Pair, 0, len(specs))

	for _, spec := range specs {
		p, err := session.ParsePair(spec)
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, p)
	}

	return pairs, nil
}

// flattenChannel pools one channel's samples across all trials.
func flattenChannel(ep *epochs.Epochs, ch int) []float64 {
	data := ep.Data()
	flat := make([]float64, 0, ep.NumTrials()*ep.NumSamples())

	for t := range data {
		flat = append(flat, data[t][ch]...)
	}

	return flat
}

// spectralBandOrder returns the configured band names sorted by their
// low edge, so tables read delta to gamma rather than alphabetically.
func spectralBandOrder(cfg *config.Config) []string {
	names := cfg.BandNames()

	sort.Slice(names, func(i, j int) bool {
		bi, bj := cfg.Bands[names[i]], cfg.Bands[names[j]]
		if bi.Low != bj.Low {
			return bi.Low < bj.Low
		}

		return names[i] < names[j]
	})

	return names
}
