// Package index provides the read-only cosine similarity index built over
// the treatment group's covariate matrix.
package index

import "fmt"

// ErrDimensionMismatch is a named error type for dimension mismatch.
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch.
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidDimension indicates an invalid configured dimension.
type ErrInvalidDimension struct {
	Dimension int
}

// Error returns the error message for an invalid dimension.
func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// Candidate is a single (treatment row, similarity) pair produced by a query.
type Candidate struct {
	// Row is the original row of the treatment vector in the matrix the
	// index was built from.
	Row int

	// Score is the cosine similarity between the query and the row.
	Score float32
}
