package phase

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMethod is returned when a Method value or name does not
// identify one of the four synchrony measures.
var ErrUnknownMethod = errors.New("phase: unknown method")

// Method identifies one of the supported phase-synchrony measures.
type Method int

const (
	// MethodPLV is the phase locking value.
	MethodPLV Method = iota

	// MethodIPLV is the imaginary phase locking value.
	MethodIPLV

	// MethodPLI is the phase-lag index.
	MethodPLI

	// MethodWPLI is the weighted phase-lag index.
	MethodWPLI
)

// Methods returns all supported measures in display order.
func Methods() []Method {
	return []Method{MethodPLV, MethodIPLV, MethodPLI, MethodWPLI}
}

// String returns the short lower-case name used on the command line and
// in serialized traces.
func (m Method) String() string {
	switch m {
	case MethodPLV:
		return "plv"
	case MethodIPLV:
		return "iplv"
	case MethodPLI:
		return "pli"
	case MethodWPLI:
		return "wpli"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// Label returns the human-readable name shown in viewers.
func (m Method) Label() string {
	switch m {
	case MethodPLV:
		return "Phase Locking Value (PLV)"
	case MethodIPLV:
		return "Imaginary Phase Locking Value (iPLV)"
	case MethodPLI:
		return "Phase Lag Index (PLI)"
	case MethodWPLI:
		return "Weighted Phase-Lag Index (wPLI)"
	default:
		return m.String()
	}
}

// Valid reports whether m identifies a supported measure.
func (m Method) Valid() bool {
	return m >= MethodPLV && m <= MethodWPLI
}

// ParseMethod resolves a method name. It accepts the short names
// (plv, iplv, pli, wpli) case-insensitively as well as the full labels.
func ParseMethod(name string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	for _, m := range Methods() {
		if key == m.String() || key == strings.ToLower(m.Label()) {
			return m, nil
		}
	}

	return 0, fmt.Errorf("%w: %q (want one of plv, iplv, pli, wpli)", ErrUnknownMethod, name)
}
