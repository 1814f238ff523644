// Package session holds the mutable state of one phase-synchronization
// analysis: the immutable raw epochs, the current band-filtered view,
// and the traces computed so far. The measure packages stay pure; all
// bookkeeping lives here.
package session

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/phaselab/phasesync/dsp/epochs"
	"github.com/phaselab/phasesync/dsp/filter/bandpass"
	"github.com/phaselab/phasesync/measure/phase"
)

// ErrNoEpochs is returned by New when no epoch set is supplied.
var ErrNoEpochs = errors.New("session: epoch set required")

const defaultFilterOrder = 4

// Session is safe for concurrent use. The filtered view is replaced
// wholesale on band changes, so computations that started against the
// previous view finish against it; their traces record the band they
// were computed with.
type Session struct {
	raw        *epochs.Epochs // immutable after New
	order      int
	metricOpts []phase.Option

	mu       sync.RWMutex
	filtered *epochs.Epochs // == raw while no band is set
	bandLow  float64
	bandHigh float64
	banded   bool
	traces   []*Trace
}

// Option configures a Session in New.
type Option func(*Session)

// WithFilterOrder sets the Butterworth order used for each band edge.
// Orders below 1 are ignored. Default is 4.
func WithFilterOrder(order int) Option {
	return func(s *Session) {
		if order >= 1 {
			s.order = order
		}
	}
}

// WithMetricOptions forwards options (such as the wPLI zero-denominator
// policy) to every measure computation in this session.
func WithMetricOptions(opts ...phase.Option) Option {
	return func(s *Session) { s.metricOpts = opts }
}

// New creates a session over an epoch set. The session references the
// epochs without copying; band filtering always derives a fresh tensor.
func New(ep *epochs.Epochs, opts ...Option) (*Session, error) {
	if ep == nil {
		return nil, ErrNoEpochs
	}

	s := &Session{raw: ep, filtered: ep, order: defaultFilterOrder}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s, nil
}

// Raw returns the unfiltered epochs the session was created with.
func (s *Session) Raw() *epochs.Epochs { return s.raw }

// Epochs returns the current view: the band-filtered epochs when a band
// is set, the raw epochs otherwise.
func (s *Session) Epochs() *epochs.Epochs {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filtered
}

// Band returns the current band edges in Hz. ok is false when the
// session is unfiltered.
func (s *Session) Band() (low, high float64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.bandLow, s.bandHigh, s.banded
}

// BandLabel returns "low-high Hz" for a banded session, else "broadband".
func (s *Session) BandLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return bandLabel(s.bandLow, s.bandHigh, s.banded)
}

// FilterOrder returns the Butterworth order used per band edge.
func (s *Session) FilterOrder() int { return s.order }

// SetBand filters the raw epochs to the band (low, high) Hz and installs
// the result as the current view. Filtering always starts from the raw
// data: setting a new band never stacks a filter on an already filtered
// view. On error the current view is left unchanged.
func (s *Session) SetBand(low, high float64) error {
	f, err := bandpass.Design(low, high, s.order, s.raw.SampleRate())
	if err != nil {
		return err
	}

	filtered, err := f.Apply(s.raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.filtered = filtered
	s.bandLow, s.bandHigh = low, high
	s.banded = true
	s.mu.Unlock()

	return nil
}

// ClearBand restores the raw epochs as the current view.
func (s *Session) ClearBand() {
	s.mu.Lock()
	s.filtered = s.raw
	s.bandLow, s.bandHigh = 0, 0
	s.banded = false
	s.mu.Unlock()
}

// Compute runs one measure between two named channels of the current
// view and appends the result to the session's traces.
func (s *Session) Compute(method phase.Method, ch1, ch2 string) (*Trace, error) {
	tr, err := s.computeTrace(s.snapshot(), method, ch1, ch2)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.traces = append(s.traces, tr)
	s.mu.Unlock()

	return tr, nil
}

// ComputePairs computes one measure for several channel pairs in
// parallel, bounded by GOMAXPROCS. Every pair reports its own result;
// a failing pair never discards the others. Successful traces are
// appended to the session in input order. All pairs are computed
// against the same view even if the band changes mid-call.
func (s *Session) ComputePairs(ctx context.Context, method phase.Method, pairs []Pair) []PairResult {
	results := make([]PairResult, len(pairs))
	if len(pairs) == 0 {
		return results
	}

	v := s.snapshot()
	sem := semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))

	var wg sync.WaitGroup

	for i, p := range pairs {
		results[i].Pair = p

		if err := sem.Acquire(ctx, 1); err != nil {
			results[i].Err = fmt.Errorf("session: pair %s: %w", p, err)
			continue
		}

		wg.Add(1)

		go func(i int, p Pair) {
			defer wg.Done()
			defer sem.Release(1)

			tr, err := s.computeTrace(v, method, p.Ch1, p.Ch2)
			results[i].Trace, results[i].Err = tr, err
		}(i, p)
	}

	wg.Wait()

	s.mu.Lock()
	for i := range results {
		if results[i].Err == nil {
			s.traces = append(s.traces, results[i].Trace)
		}
	}
	s.mu.Unlock()

	return results
}

// Traces returns the accumulated traces in computation order. The slice
// is a copy; the traces themselves are immutable once created.
func (s *Session) Traces() []*Trace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Trace, len(s.traces))
	copy(out, s.traces)

	return out
}

// Reset drops all accumulated traces. The current band stays in effect.
func (s *Session) Reset() {
	s.mu.Lock()
	s.traces = nil
	s.mu.Unlock()
}

// view is a consistent snapshot of the epochs and band metadata a
// computation runs against.
type view struct {
	ep   *epochs.Epochs
	band string
}

func (s *Session) snapshot() view {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return view{
		ep:   s.filtered,
		band: bandLabel(s.bandLow, s.bandHigh, s.banded),
	}
}

func (s *Session) computeTrace(v view, method phase.Method, ch1, ch2 string) (*Trace, error) {
	i1, err := v.ep.ChannelIndex(ch1)
	if err != nil {
		return nil, err
	}

	i2, err := v.ep.ChannelIndex(ch2)
	if err != nil {
		return nil, err
	}

	values, err := phase.Compute(method, v.ep, i1, i2, s.metricOpts...)
	if err != nil {
		return nil, err
	}

	return &Trace{
		ID:      uuid.New().String(),
		Method:  method.String(),
		Ch1:     ch1,
		Ch2:     ch2,
		Band:    v.band,
		Times:   v.ep.Times(),
		Values:  values,
		Created: time.Now(),
	}, nil
}

func bandLabel(low, high float64, banded bool) string {
	if !banded {
		return "broadband"
	}

	return fmt.Sprintf("%g-%g Hz", low, high)
}
