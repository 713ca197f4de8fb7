package match

import (
	"context"
	"iter"
	"math/rand"
	"testing"

	"github.com/hupe1980/matchgo/cohort"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIndex returns fixed scores per query so tests can pin exact
// similarities without constructing covariate geometry.
type stubIndex struct {
	rows   int
	scores func(q []float32) []float32
}

func (s *stubIndex) Len() int { return s.rows }

func (s *stubIndex) Scan(q []float32) (iter.Seq2[int, float32], error) {
	scores := s.scores(q)
	return func(yield func(int, float32) bool) {
		for i, score := range scores {
			if !yield(i, score) {
				return
			}
		}
	}, nil
}

// scenarioGroups builds the 4-unit population used across the tests:
// cos(C1,T1)=0.95, cos(C1,T2)=0.10, cos(C2,T1)=0.90, cos(C2,T2)=0.05.
func scenarioGroups() (cohort.Groups, *stubIndex) {
	groups := cohort.Groups{
		Treatment: []cohort.Unit{
			{ID: "T1", Vector: []float32{1}, Feedback: 1},
			{ID: "T2", Vector: []float32{2}, Feedback: 1},
		},
		Control: []cohort.Unit{
			{ID: "C1", Vector: []float32{1}},
			{ID: "C2", Vector: []float32{2}},
		},
	}
	idx := &stubIndex{
		rows: 2,
		scores: func(q []float32) []float32 {
			if q[0] == 1 {
				return []float32{0.95, 0.10}
			}
			return []float32{0.90, 0.05}
		},
	}
	return groups, idx
}

func identityPerm(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

func TestMatchWithoutReplacement(t *testing.T) {
	groups, idx := scenarioGroups()

	m, err := New(groups, idx, func(o *Options) {
		o.Threshold = 0.9
		o.Replacement = false
		o.Perm = identityPerm
	})
	require.NoError(t, err)

	result, err := m.Match(context.Background())
	require.NoError(t, err)

	// C1 claims T1 at 0.95; C2's best (T1, 0.90) is claimed and its next
	// candidate (T2, 0.05) is below threshold.
	require.Len(t, result.Records, 1)
	assert.Equal(t, Record{ControlID: "C1", TreatmentID: "T1", Score: 0.95}, result.Records[0])
	assert.Equal(t, 1, result.UnmatchedControls)
	assert.Equal(t, []string{"C1"}, result.MatchedControls)
	assert.Equal(t, []string{"T1"}, result.MatchedTreatments)
}

func TestMatchWithReplacement(t *testing.T) {
	groups, idx := scenarioGroups()

	m, err := New(groups, idx, func(o *Options) {
		o.Threshold = 0.9
		o.Replacement = true
		o.Perm = identityPerm
	})
	require.NoError(t, err)

	result, err := m.Match(context.Background())
	require.NoError(t, err)

	// Both controls clear the threshold against T1 independently.
	require.Len(t, result.Records, 2)
	assert.Equal(t, Record{ControlID: "C1", TreatmentID: "T1", Score: 0.95}, result.Records[0])
	assert.Equal(t, Record{ControlID: "C2", TreatmentID: "T1", Score: 0.90}, result.Records[1])
	assert.Equal(t, []string{"T1", "T1"}, result.MatchedTreatments)
	assert.Equal(t, 0, result.UnmatchedControls)
}

func TestTreatmentClaimedOnce(t *testing.T) {
	// Every control prefers the same treatment; without replacement it can
	// be claimed only once.
	groups := cohort.Groups{
		Treatment: []cohort.Unit{
			{ID: "T1", Feedback: 1},
			{ID: "T2", Feedback: 1},
		},
		Control: []cohort.Unit{
			{ID: "C1"}, {ID: "C2"}, {ID: "C3"},
		},
	}
	idx := &stubIndex{
		rows: 2,
		scores: func([]float32) []float32 {
			return []float32{0.99, 0.98}
		},
	}

	m, err := New(groups, idx, func(o *Options) {
		o.Threshold = 0.5
		o.Perm = identityPerm
	})
	require.NoError(t, err)

	result, err := m.Match(context.Background())
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, rec := range result.Records {
		seen[rec.TreatmentID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "treatment %s claimed more than once", id)
	}

	// Third control exhausts the candidate list without finding an
	// unclaimed treatment; that is an unmatched outcome, not an error.
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.UnmatchedControls)
}

func TestThresholdInvariant(t *testing.T) {
	groups := cohort.Groups{
		Treatment: []cohort.Unit{{ID: "T1", Feedback: 1}, {ID: "T2", Feedback: 1}},
		Control:   []cohort.Unit{{ID: "C1"}, {ID: "C2"}, {ID: "C3"}},
	}
	idx := &stubIndex{
		rows: 2,
		scores: func(q []float32) []float32 {
			return []float32{float32(len(q)) * 0.2, 0.45}
		},
	}

	for _, replacement := range []bool{false, true} {
		m, err := New(groups, idx, func(o *Options) {
			o.Threshold = 0.4
			o.Replacement = replacement
			o.Perm = identityPerm
		})
		require.NoError(t, err)

		result, err := m.Match(context.Background())
		require.NoError(t, err)

		for _, rec := range result.Records {
			assert.GreaterOrEqual(t, rec.Score, float32(0.4))
		}
	}
}

func TestDeterminismUnderFixedSeed(t *testing.T) {
	groups := cohort.Groups{
		Treatment: []cohort.Unit{
			{ID: "T1", Feedback: 1}, {ID: "T2", Feedback: 1}, {ID: "T3", Feedback: 1},
		},
		Control: []cohort.Unit{
			{ID: "C1", Vector: []float32{1}},
			{ID: "C2", Vector: []float32{2}},
			{ID: "C3", Vector: []float32{3}},
			{ID: "C4", Vector: []float32{4}},
		},
	}
	idx := &stubIndex{
		rows: 3,
		scores: func(q []float32) []float32 {
			base := q[0] / 10
			return []float32{base + 0.5, base + 0.4, base + 0.3}
		},
	}

	run := func(seed int64) *Result {
		m, err := New(groups, idx, func(o *Options) {
			o.Threshold = 0.6
			o.Perm = rand.New(rand.NewSource(seed)).Perm
		})
		require.NoError(t, err)

		result, err := m.Match(context.Background())
		require.NoError(t, err)
		return result
	}

	first := run(42)
	second := run(42)
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.UnmatchedControls, second.UnmatchedControls)
	assert.Equal(t, first.BestPairs, second.BestPairs)
}

func TestBaselinePassThrough(t *testing.T) {
	groups, _ := scenarioGroups()

	m, err := New(groups, nil, func(o *Options) {
		o.Distance = DistanceNone
	})
	require.NoError(t, err)

	result, err := m.Match(context.Background())
	require.NoError(t, err)

	assert.Equal(t, cohort.IDs(groups.Control), result.MatchedControls)
	assert.Equal(t, cohort.IDs(groups.Treatment), result.MatchedTreatments)
	assert.Empty(t, result.Records)
	assert.Zero(t, result.UnmatchedControls)
}

func TestTieBreakByRow(t *testing.T) {
	// Equal scores must rank by ascending treatment row.
	groups := cohort.Groups{
		Treatment: []cohort.Unit{
			{ID: "T1", Feedback: 1}, {ID: "T2", Feedback: 1}, {ID: "T3", Feedback: 1},
		},
		Control: []cohort.Unit{{ID: "C1"}},
	}
	idx := &stubIndex{
		rows: 3,
		scores: func([]float32) []float32 {
			return []float32{0.7, 0.7, 0.7}
		},
	}

	m, err := New(groups, idx, func(o *Options) {
		o.Threshold = 0.5
		o.Perm = identityPerm
	})
	require.NoError(t, err)

	result, err := m.Match(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "T1", result.Records[0].TreatmentID)
}

func TestTopPairs(t *testing.T) {
	groups, idx := scenarioGroups()

	m, err := New(groups, idx, func(o *Options) {
		o.Threshold = 0.9
		o.Perm = identityPerm
	})
	require.NoError(t, err)

	result, err := m.Match(context.Background())
	require.NoError(t, err)

	top := result.TopPairs(5)
	require.Len(t, top, 2)
	assert.Equal(t, Pair{ControlID: "C1", TreatmentID: "T1", Score: 0.95}, top[0])
	assert.Equal(t, Pair{ControlID: "C2", TreatmentID: "T1", Score: 0.90}, top[1])

	assert.Len(t, result.TopPairs(1), 1)
}

func TestNewValidation(t *testing.T) {
	groups, idx := scenarioGroups()

	t.Run("EmptyTreatment", func(t *testing.T) {
		_, err := New(cohort.Groups{Control: groups.Control}, idx)
		var target *ErrEmptyGroup
		require.ErrorAs(t, err, &target)
		assert.Equal(t, "treatment", target.Group)
	})

	t.Run("EmptyControl", func(t *testing.T) {
		_, err := New(cohort.Groups{Treatment: groups.Treatment}, idx)
		var target *ErrEmptyGroup
		require.ErrorAs(t, err, &target)
		assert.Equal(t, "control", target.Group)
	})

	t.Run("UnsupportedDistance", func(t *testing.T) {
		_, err := New(groups, idx, func(o *Options) {
			o.Distance = Distance(99)
		})
		var target *ErrUnsupportedDistance
		assert.ErrorAs(t, err, &target)
	})

	t.Run("IndexSizeMismatch", func(t *testing.T) {
		_, err := New(groups, &stubIndex{rows: 5, scores: idx.scores})
		var target *ErrIndexSizeMismatch
		assert.ErrorAs(t, err, &target)
	})

	t.Run("NilIndex", func(t *testing.T) {
		_, err := New(groups, nil)
		assert.Error(t, err)
	})
}

func TestParseDistance(t *testing.T) {
	d, err := ParseDistance("none")
	require.NoError(t, err)
	assert.Equal(t, DistanceNone, d)

	d, err = ParseDistance("Cosine")
	require.NoError(t, err)
	assert.Equal(t, DistanceCosine, d)

	_, err = ParseDistance("mahalanobis")
	var target *ErrUnsupportedDistance
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "mahalanobis", target.Mode)
}
