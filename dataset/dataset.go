// Package dataset loads covariate and outcome records into study units.
//
// Both stores are textual, one comma-separated record per unit:
//
//   - covariates: leading fields are float covariate values, the trailing
//     field is the unit id; every record must share the dimensionality of
//     the first record.
//   - outcomes: a header line followed by (id, feedback, outcome) records,
//     where outcome is a bool literal.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/matchgo/cohort"
)

// maxRecordSize bounds a single record; high-dimensional covariate rows can
// exceed bufio.Scanner's default line limit.
const maxRecordSize = 4 * 1024 * 1024

// ErrInvalidRecord indicates a malformed source record.
type ErrInvalidRecord struct {
	Line   int
	Reason string
}

// Error returns the error message for an invalid record.
func (e *ErrInvalidRecord) Error() string {
	return fmt.Sprintf("invalid record at line %d: %s", e.Line, e.Reason)
}

// ErrMissingUnit indicates a unit present in one store but not the other.
type ErrMissingUnit struct {
	ID    string
	Store string
}

// Error returns the error message for a missing unit.
func (e *ErrMissingUnit) Error() string {
	return fmt.Sprintf("unit %q has no record in the %s store", e.ID, e.Store)
}

// Covariate is one unit's covariate vector, in source-file order.
type Covariate struct {
	ID     string
	Vector []float32
}

// Outcome is one unit's feedback signal and study outcome.
type Outcome struct {
	Feedback float64
	Returned bool
}

// ReadCovariates parses covariate records, preserving source order.
// It returns the records and the dimensionality shared by all of them.
func ReadCovariates(r io.Reader) ([]Covariate, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	var (
		covariates []Covariate
		dimension  int
		line       int
	)

	for scanner.Scan() {
		line++
		record := strings.TrimSpace(scanner.Text())
		if record == "" {
			continue
		}

		fields := strings.Split(record, ",")
		if len(fields) < 2 {
			return nil, 0, &ErrInvalidRecord{Line: line, Reason: "expected covariate values followed by a unit id"}
		}

		id := strings.TrimSpace(fields[len(fields)-1])
		if id == "" {
			return nil, 0, &ErrInvalidRecord{Line: line, Reason: "empty unit id"}
		}

		values := fields[:len(fields)-1]
		if dimension == 0 {
			dimension = len(values)
		} else if len(values) != dimension {
			return nil, 0, &ErrInvalidRecord{
				Line:   line,
				Reason: fmt.Sprintf("expected %d covariate values, got %d", dimension, len(values)),
			}
		}

		vector := make([]float32, len(values))
		for i, raw := range values {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 32)
			if err != nil {
				return nil, 0, &ErrInvalidRecord{Line: line, Reason: fmt.Sprintf("bad covariate value %q", raw)}
			}
			vector[i] = float32(v)
		}

		covariates = append(covariates, Covariate{ID: id, Vector: vector})
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}

	return covariates, dimension, nil
}

// ReadOutcomes parses outcome records. The first line is a header and is
// skipped. Negative feedback values are rejected: group assignment is
// defined only for zero (control) and positive (treatment) feedback.
func ReadOutcomes(r io.Reader) (map[string]Outcome, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	outcomes := make(map[string]Outcome)
	line := 0

	for scanner.Scan() {
		line++
		if line == 1 {
			continue // header
		}

		record := strings.TrimSpace(scanner.Text())
		if record == "" {
			continue
		}

		fields := strings.Split(record, ",")
		if len(fields) != 3 {
			return nil, &ErrInvalidRecord{Line: line, Reason: fmt.Sprintf("expected 3 fields, got %d", len(fields))}
		}

		id := strings.TrimSpace(fields[0])
		if id == "" {
			return nil, &ErrInvalidRecord{Line: line, Reason: "empty unit id"}
		}

		feedback, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, &ErrInvalidRecord{Line: line, Reason: fmt.Sprintf("bad feedback value %q", fields[1])}
		}
		if feedback < 0 {
			return nil, &ErrInvalidRecord{Line: line, Reason: fmt.Sprintf("negative feedback %v", feedback)}
		}

		returned, err := strconv.ParseBool(strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, &ErrInvalidRecord{Line: line, Reason: fmt.Sprintf("bad outcome value %q", fields[2])}
		}

		outcomes[id] = Outcome{Feedback: feedback, Returned: returned}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

// Join combines covariate and outcome records into study units, preserving
// covariate order. Every unit must appear in both stores.
func Join(covariates []Covariate, outcomes map[string]Outcome) ([]cohort.Unit, error) {
	units := make([]cohort.Unit, 0, len(covariates))
	seen := make(map[string]struct{}, len(covariates))

	for _, c := range covariates {
		out, ok := outcomes[c.ID]
		if !ok {
			return nil, &ErrMissingUnit{ID: c.ID, Store: "outcome"}
		}
		seen[c.ID] = struct{}{}
		units = append(units, cohort.Unit{
			ID:       c.ID,
			Vector:   c.Vector,
			Feedback: out.Feedback,
			Returned: out.Returned,
		})
	}

	for id := range outcomes {
		if _, ok := seen[id]; !ok {
			return nil, &ErrMissingUnit{ID: id, Store: "covariate"}
		}
	}

	return units, nil
}
