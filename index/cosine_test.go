package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCosine(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		_, err := NewCosine(nil, 3)
		assert.ErrorIs(t, err, ErrEmptyIndex)
	})

	t.Run("InvalidDimension", func(t *testing.T) {
		_, err := NewCosine([][]float32{{1, 2}}, 0)
		var target *ErrInvalidDimension
		assert.ErrorAs(t, err, &target)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := NewCosine([][]float32{{1, 2}, {1, 2, 3}}, 2)
		var target *ErrDimensionMismatch
		require.ErrorAs(t, err, &target)
		assert.Equal(t, 2, target.Expected)
		assert.Equal(t, 3, target.Actual)
	})
}

func TestCosineQuery(t *testing.T) {
	t.Run("Scores", func(t *testing.T) {
		idx, err := NewCosine([][]float32{
			{1, 0},
			{0, 1},
			{-1, 0},
		}, 2)
		require.NoError(t, err)

		candidates, err := idx.Query([]float32{2, 0})
		require.NoError(t, err)
		require.Len(t, candidates, 3)

		scores := make(map[int]float32)
		for _, c := range candidates {
			scores[c.Row] = c.Score
		}
		assert.InDelta(t, 1.0, scores[0], 1e-6)
		assert.InDelta(t, 0.0, scores[1], 1e-6)
		assert.InDelta(t, -1.0, scores[2], 1e-6)
	})

	t.Run("ZeroNormQuery", func(t *testing.T) {
		idx, err := NewCosine([][]float32{{1, 0}}, 2)
		require.NoError(t, err)

		candidates, err := idx.Query([]float32{0, 0})
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, float32(0), candidates[0].Score)
	})

	t.Run("ZeroNormRow", func(t *testing.T) {
		idx, err := NewCosine([][]float32{{0, 0}, {1, 1}}, 2)
		require.NoError(t, err)

		candidates, err := idx.Query([]float32{1, 1})
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, float32(0), candidates[0].Score)
		assert.InDelta(t, 1.0, candidates[1].Score, 1e-6)
	})

	t.Run("QueryDimensionMismatch", func(t *testing.T) {
		idx, err := NewCosine([][]float32{{1, 0}}, 2)
		require.NoError(t, err)

		_, err = idx.Query([]float32{1, 2, 3})
		var target *ErrDimensionMismatch
		assert.ErrorAs(t, err, &target)
	})

	t.Run("RepeatableAcrossQueries", func(t *testing.T) {
		idx, err := NewCosine([][]float32{{1, 2}, {3, 4}, {5, 6}}, 2)
		require.NoError(t, err)

		first, err := idx.Query([]float32{1, 1})
		require.NoError(t, err)

		// Interleave an unrelated query; the index must not carry state.
		_, err = idx.Query([]float32{9, 9})
		require.NoError(t, err)

		second, err := idx.Query([]float32{1, 1})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("ScanEarlyStop", func(t *testing.T) {
		idx, err := NewCosine([][]float32{{1, 0}, {0, 1}, {1, 1}}, 2)
		require.NoError(t, err)

		scan, err := idx.Scan([]float32{1, 0})
		require.NoError(t, err)

		count := 0
		for range scan {
			count++
			if count == 2 {
				break
			}
		}
		assert.Equal(t, 2, count)
	})
}
