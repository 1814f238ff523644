package epochs

import (
	"errors"
	"fmt"
)

// Errors returned by epoch construction and channel lookup.
var (
	ErrNoTrials       = errors.New("epochs: at least one trial required")
	ErrNoChannels     = errors.New("epochs: at least one channel required")
	ErrNoSamples      = errors.New("epochs: at least one sample required")
	ErrRagged         = errors.New("epochs: ragged data")
	ErrSampleRate     = errors.New("epochs: sample rate must be positive")
	ErrChannelNames   = errors.New("epochs: channel name count mismatch")
	ErrDuplicateName  = errors.New("epochs: duplicate channel name")
	ErrChannelRange   = errors.New("epochs: channel index out of range")
	ErrTrialRange     = errors.New("epochs: trial index out of range")
	ErrUnknownChannel = errors.New("epochs: unknown channel name")
)

// Epochs is a rectangular set of time-aligned recordings, indexed
// [trial][channel][sample]. Trials are independent repetitions of the
// same experimental window; all trials share the channel and sample count.
//
// The backing slices are referenced, not copied. Epochs never mutates
// them, and callers must not modify them while a computation is running.
type Epochs struct {
	data  [][][]float64
	names []string
	byIdx map[string]int
	rate  float64
	tmin  float64
}

// Option configures optional Epochs metadata in New.
type Option func(*Epochs)

// WithChannelNames assigns channel names in channel-axis order.
// The count must match the channel axis or New fails.
func WithChannelNames(names []string) Option {
	return func(ep *Epochs) { ep.names = names }
}

// WithStartTime sets the time of the first sample in seconds.
// EEG-style epochs often start before the stimulus (negative tmin).
func WithStartTime(tmin float64) Option {
	return func(ep *Epochs) { ep.tmin = tmin }
}

// New validates data as a rectangular [trial][channel][sample] tensor and
// wraps it with the given sample rate in Hz. Channel names default to
// "ch0".."chN-1" unless WithChannelNames supplies them.
func New(data [][][]float64, sampleRate float64, opts ...Option) (*Epochs, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrSampleRate, sampleRate)
	}

	if len(data) == 0 {
		return nil, ErrNoTrials
	}

	channels := len(data[0])
	if channels == 0 {
		return nil, ErrNoChannels
	}

	samples := len(data[0][0])
	if samples == 0 {
		return nil, ErrNoSamples
	}

	for t, trial := range data {
		if len(trial) != channels {
			return nil, fmt.Errorf("%w: trial %d has %d channels, want %d", ErrRagged, t, len(trial), channels)
		}

		for c, ch := range trial {
			if len(ch) != samples {
				return nil, fmt.Errorf("%w: trial %d channel %d has %d samples, want %d", ErrRagged, t, c, len(ch), samples)
			}
		}
	}

	ep := &Epochs{data: data, rate: sampleRate}
	for _, opt := range opts {
		if opt != nil {
			opt(ep)
		}
	}

	if ep.names == nil {
		ep.names = defaultNames(channels)
	}

	if len(ep.names) != channels {
		return nil, fmt.Errorf("%w: %d names for %d channels", ErrChannelNames, len(ep.names), channels)
	}

	ep.byIdx = make(map[string]int, channels)
	for i, name := range ep.names {
		if _, dup := ep.byIdx[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}

		ep.byIdx[name] = i
	}

	return ep, nil
}

func defaultNames(channels int) []string {
	names := make([]string, channels)
	for i := range names {
		names[i] = fmt.Sprintf("ch%d", i)
	}

	return names
}

// NumTrials returns the trial count.
func (ep *Epochs) NumTrials() int { return len(ep.data) }

// NumChannels returns the channel count.
func (ep *Epochs) NumChannels() int { return len(ep.data[0]) }

// NumSamples returns the per-trial sample count.
func (ep *Epochs) NumSamples() int { return len(ep.data[0][0]) }

// SampleRate returns the sampling rate in Hz.
func (ep *Epochs) SampleRate() float64 { return ep.rate }

// StartTime returns the time of the first sample in seconds.
func (ep *Epochs) StartTime() float64 { return ep.tmin }

// Duration returns the epoch length in seconds.
func (ep *Epochs) Duration() float64 {
	return float64(ep.NumSamples()) / ep.rate
}

// ChannelNames returns the channel names in channel-axis order.
// The returned slice is shared; callers must not modify it.
func (ep *Epochs) ChannelNames() []string { return ep.names }

// ChannelName returns the name of channel ch.
func (ep *Epochs) ChannelName(ch int) (string, error) {
	if err := ep.CheckChannel(ch); err != nil {
		return "", err
	}

	return ep.names[ch], nil
}

// ChannelIndex resolves a channel name to its index on the channel axis.
func (ep *Epochs) ChannelIndex(name string) (int, error) {
	idx, ok := ep.byIdx[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
	}

	return idx, nil
}

// CheckChannel validates a channel index against the channel axis.
func (ep *Epochs) CheckChannel(ch int) error {
	if ch < 0 || ch >= ep.NumChannels() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrChannelRange, ch, ep.NumChannels())
	}

	return nil
}

// Channel returns the sample sequence for one trial and channel.
// The returned slice aliases the backing data; treat it as read-only.
func (ep *Epochs) Channel(trial, ch int) ([]float64, error) {
	if trial < 0 || trial >= ep.NumTrials() {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrTrialRange, trial, ep.NumTrials())
	}

	if err := ep.CheckChannel(ch); err != nil {
		return nil, err
	}

	return ep.data[trial][ch], nil
}

// Data returns the backing tensor. Treat it as read-only.
func (ep *Epochs) Data() [][][]float64 { return ep.data }

// Times returns the sample times in seconds: tmin + i/rate.
func (ep *Epochs) Times() []float64 {
	out := make([]float64, ep.NumSamples())
	for i := range out {
		out[i] = ep.tmin + float64(i)/ep.rate
	}

	return out
}

// Clone returns a deep copy with its own backing tensor, so transforms
// such as filtering can work on fresh data while the original stays intact.
func (ep *Epochs) Clone() *Epochs {
	data := make([][][]float64, len(ep.data))
	for t, trial := range ep.data {
		data[t] = make([][]float64, len(trial))
		for c, ch := range trial {
			data[t][c] = make([]float64, len(ch))
			copy(data[t][c], ch)
		}
	}

	names := make([]string, len(ep.names))
	copy(names, ep.names)

	byIdx := make(map[string]int, len(ep.byIdx))
	for name, idx := range ep.byIdx {
		byIdx[name] = idx
	}

	return &Epochs{data: data, names: names, byIdx: byIdx, rate: ep.rate, tmin: ep.tmin}
}
