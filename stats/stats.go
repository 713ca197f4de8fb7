// Package stats computes return-rate statistics over matched unit groups.
package stats

import (
	"errors"
	"fmt"
)

// ErrDivisionByZero is returned when a rate or relative effect has a zero
// denominator: an empty group, or a zero control return rate.
var ErrDivisionByZero = errors.New("stats: division by zero")

// ErrUnknownUnit indicates a unit id with no recorded outcome.
type ErrUnknownUnit struct {
	ID string
}

// Error returns the error message for an unknown unit.
func (e *ErrUnknownUnit) Error() string {
	return fmt.Sprintf("no outcome recorded for unit %q", e.ID)
}

// Effect holds the return probabilities of a treatment/control comparison.
type Effect struct {
	// PTreatment is P(return | treatment).
	PTreatment float64

	// PControl is P(return | control).
	PControl float64

	// PPooled is the return probability over both groups combined.
	PPooled float64

	// TreatmentSize and ControlSize are the group sizes the rates were
	// computed over. With-replacement matching may repeat ids; repeats
	// count every occurrence.
	TreatmentSize int
	ControlSize   int
}

// RelativeIncrease returns (PTreatment - PControl) / PControl.
// A zero control rate makes the effect undefined and yields
// ErrDivisionByZero; it is never silently reported as Inf or zero.
func (e Effect) RelativeIncrease() (float64, error) {
	if e.PControl == 0 {
		return 0, fmt.Errorf("%w: control return rate is zero", ErrDivisionByZero)
	}
	return (e.PTreatment - e.PControl) / e.PControl, nil
}

// Rates computes return probabilities for the two id sets against the
// recorded outcomes. Either set being empty is ErrDivisionByZero.
func Rates(treated, control []string, outcomes map[string]bool) (Effect, error) {
	if len(treated) == 0 {
		return Effect{}, fmt.Errorf("%w: empty treatment group", ErrDivisionByZero)
	}
	if len(control) == 0 {
		return Effect{}, fmt.Errorf("%w: empty control group", ErrDivisionByZero)
	}

	treatedReturns, err := countReturns(treated, outcomes)
	if err != nil {
		return Effect{}, err
	}
	controlReturns, err := countReturns(control, outcomes)
	if err != nil {
		return Effect{}, err
	}

	return Effect{
		PTreatment:    float64(treatedReturns) / float64(len(treated)),
		PControl:      float64(controlReturns) / float64(len(control)),
		PPooled:       float64(treatedReturns+controlReturns) / float64(len(treated)+len(control)),
		TreatmentSize: len(treated),
		ControlSize:   len(control),
	}, nil
}

func countReturns(ids []string, outcomes map[string]bool) (int, error) {
	count := 0
	for _, id := range ids {
		returned, ok := outcomes[id]
		if !ok {
			return 0, &ErrUnknownUnit{ID: id}
		}
		if returned {
			count++
		}
	}
	return count, nil
}
