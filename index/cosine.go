package index

import (
	"errors"
	"iter"

	"github.com/hupe1980/matchgo/metric"
)

// ErrEmptyIndex is returned when the index is built from no vectors.
var ErrEmptyIndex = errors.New("index: treatment set is empty")

// Cosine answers cosine similarity queries against a fixed set of vectors.
//
// Vectors are L2-normalized at construction so a query costs one dot product
// per row. The index is read-only after construction and safe for concurrent
// queries; it carries no cross-query state, so identical queries always
// produce identical results.
type Cosine struct {
	dimension int
	// normalized holds the L2-normalized rows. A nil row marks a
	// zero-norm input vector, which scores 0 against every query.
	normalized [][]float32
}

// NewCosine builds an index over the given vectors.
// Every row must have length dimension.
func NewCosine(vectors [][]float32, dimension int) (*Cosine, error) {
	if dimension <= 0 {
		return nil, &ErrInvalidDimension{Dimension: dimension}
	}
	if len(vectors) == 0 {
		return nil, ErrEmptyIndex
	}

	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, &ErrDimensionMismatch{Expected: dimension, Actual: len(v)}
		}
		if norm, ok := metric.NormalizeL2Copy(v); ok {
			normalized[i] = norm
		}
	}

	return &Cosine{
		dimension:  dimension,
		normalized: normalized,
	}, nil
}

// Dimension returns the configured vector dimensionality.
func (c *Cosine) Dimension() int {
	return c.dimension
}

// Len returns the number of indexed vectors.
func (c *Cosine) Len() int {
	return len(c.normalized)
}

// Scan lazily yields (row, similarity) for every indexed vector.
// The order of rows is unspecified; ranking is the caller's responsibility.
// A zero-norm query or a zero-norm row scores 0.
func (c *Cosine) Scan(q []float32) (iter.Seq2[int, float32], error) {
	if len(q) != c.dimension {
		return nil, &ErrDimensionMismatch{Expected: c.dimension, Actual: len(q)}
	}

	query, ok := metric.NormalizeL2Copy(q)

	return func(yield func(int, float32) bool) {
		for i, row := range c.normalized {
			var score float32
			if ok && row != nil {
				score = metric.Dot(query, row)
			}
			if !yield(i, score) {
				return
			}
		}
	}, nil
}

// Query returns the similarity of q against every indexed vector.
func (c *Cosine) Query(q []float32) ([]Candidate, error) {
	scan, err := c.Scan(q)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, c.Len())
	for row, score := range scan {
		candidates = append(candidates, Candidate{Row: row, Score: score})
	}
	return candidates, nil
}
