package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrPair is returned by ParsePair for strings that do not name two
// channels.
var ErrPair = errors.New("session: invalid channel pair")

// Trace is one computed synchrony time course with the metadata needed
// to label it: which measure, which channels, and which band the view
// carried when it was computed.
type Trace struct {
	ID      string    `json:"id"`
	Method  string    `json:"method"`
	Ch1     string    `json:"ch1"`
	Ch2     string    `json:"ch2"`
	Band    string    `json:"band"`
	Times   []float64 `json:"times"`
	Values  []float64 `json:"values"`
	Created time.Time `json:"created"`
}

// Label renders a short legend entry such as "Cz-Pz plv 8-12 Hz".
func (t *Trace) Label() string {
	return fmt.Sprintf("%s-%s %s %s", t.Ch1, t.Ch2, t.Method, t.Band)
}

// Pair names the two channels of one synchrony computation.
type Pair struct {
	Ch1 string
	Ch2 string
}

func (p Pair) String() string {
	return p.Ch1 + "-" + p.Ch2
}

// ParsePair parses "ch1-ch2" notation. The split happens at the first
// hyphen, so channel names containing hyphens cannot be addressed this
// way; that limitation only affects the text syntax, not the API.
func ParsePair(s string) (Pair, error) {
	ch1, ch2, ok := strings.Cut(s, "-")
	ch1 = strings.TrimSpace(ch1)
	ch2 = strings.TrimSpace(ch2)

	if !ok || ch1 == "" || ch2 == "" {
		return Pair{}, fmt.Errorf("%w: %q (want \"ch1-ch2\")", ErrPair, s)
	}

	return Pair{Ch1: ch1, Ch2: ch2}, nil
}

// PairResult is the outcome of one pair in a ComputePairs batch.
type PairResult struct {
	Pair  Pair
	Trace *Trace // nil when Err is set
	Err   error
}
