package match

import (
	"fmt"
	"strings"
)

// Distance selects how control units are compared against treatment units.
type Distance int

const (
	// DistanceNone disables matching: treatment and control pass through
	// unchanged (the uncorrected baseline comparison).
	DistanceNone Distance = iota

	// DistanceCosine matches on cosine similarity of covariate vectors.
	DistanceCosine
)

// String returns a string representation of the Distance.
func (d Distance) String() string {
	switch d {
	case DistanceNone:
		return "none"
	case DistanceCosine:
		return "cosine"
	default:
		return fmt.Sprintf("Unknown(%d)", int(d))
	}
}

// ErrUnsupportedDistance indicates a distance mode other than none/cosine.
type ErrUnsupportedDistance struct {
	Mode string
}

// Error returns the error message for an unsupported distance mode.
func (e *ErrUnsupportedDistance) Error() string {
	return fmt.Sprintf("unsupported distance: %q", e.Mode)
}

// ParseDistance converts a configuration string into a Distance.
// Only "none" and "cosine" are supported.
func ParseDistance(s string) (Distance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return DistanceNone, nil
	case "cosine":
		return DistanceCosine, nil
	default:
		return 0, &ErrUnsupportedDistance{Mode: s}
	}
}
