package matchgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/matchgo/dataset"
	"github.com/hupe1980/matchgo/index"
	"github.com/hupe1980/matchgo/match"
	"github.com/hupe1980/matchgo/metric"
	"github.com/hupe1980/matchgo/stats"
)

var (
	// ErrInvalidInput is returned for malformed or missing source records,
	// dimensionality mismatches, and empty groups. It aborts the run.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedDistance is returned for a distance mode other than
	// none/cosine, before any computation.
	ErrUnsupportedDistance = errors.New("unsupported distance")

	// ErrDivisionByZero is returned when outcome aggregation has a zero
	// denominator.
	ErrDivisionByZero = errors.New("division by zero")
)

// translateError normalizes package-level errors into the facade taxonomy.
// The original error remains accessible via errors.Is/As.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ud *match.ErrUnsupportedDistance
	if errors.As(err, &ud) {
		return fmt.Errorf("%w: %w", ErrUnsupportedDistance, err)
	}

	if errors.Is(err, stats.ErrDivisionByZero) {
		return fmt.Errorf("%w: %w", ErrDivisionByZero, err)
	}

	// Invalid input unification.
	var eg *match.ErrEmptyGroup
	if errors.As(err, &eg) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var ism *match.ErrIndexSizeMismatch
	if errors.As(err, &ism) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var dm *index.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var id *index.ErrInvalidDimension
	if errors.As(err, &id) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, index.ErrEmptyIndex) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var ir *dataset.ErrInvalidRecord
	if errors.As(err, &ir) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var mu *dataset.ErrMissingUnit
	if errors.As(err, &mu) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var uu *stats.ErrUnknownUnit
	if errors.As(err, &uu) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, metric.ErrLengthMismatch) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return err
}
