// Package match implements the greedy threshold matching engine that pairs
// each control unit with a similar treatment unit.
package match

import (
	"context"
	"fmt"
	"iter"
	"math/rand"
	"runtime"
	"slices"
	"time"

	"github.com/hupe1980/matchgo/cohort"
	"github.com/hupe1980/matchgo/index"
)

// Index answers similarity queries against the treatment matrix.
// Implementations must be read-only and safe for concurrent Scan calls.
type Index interface {
	// Len returns the number of indexed treatment vectors.
	Len() int

	// Scan yields (row, similarity) for every indexed vector in
	// unspecified order.
	Scan(q []float32) (iter.Seq2[int, float32], error)
}

// ErrEmptyGroup indicates that the treatment or control group is empty.
type ErrEmptyGroup struct {
	Group string
}

// Error returns the error message for an empty group.
func (e *ErrEmptyGroup) Error() string {
	return fmt.Sprintf("empty %s group", e.Group)
}

// ErrIndexSizeMismatch indicates that the index does not cover the
// treatment group it is supposed to be built over.
type ErrIndexSizeMismatch struct {
	Treatment int
	Indexed   int
}

// Error returns the error message for an index size mismatch.
func (e *ErrIndexSizeMismatch) Error() string {
	return fmt.Sprintf("index covers %d vectors, treatment group has %d", e.Indexed, e.Treatment)
}

// Record is a single accepted (control, treatment) match.
type Record struct {
	ControlID   string
	TreatmentID string
	Score       float32
}

// Pair maps a control unit to its most similar treatment unit regardless of
// claims or threshold. Pairs exist purely for reporting.
type Pair struct {
	ControlID   string
	TreatmentID string
	Score       float32
}

// Result is the outcome of one matching run.
type Result struct {
	// Records holds the accepted matches. Without replacement every
	// treatment id appears at most once; with replacement it may repeat.
	Records []Record

	// MatchedControls and MatchedTreatments are the unit ids derived from
	// Records. In baseline mode (DistanceNone) they are the unchanged
	// control and treatment groups.
	MatchedControls   []string
	MatchedTreatments []string

	// UnmatchedControls counts control units that produced no record:
	// best candidate below threshold or all candidates already claimed.
	UnmatchedControls int

	// BestPairs maps every control unit to its single most similar
	// treatment unit, in processing order.
	BestPairs []Pair
}

// TopPairs returns the n highest-scoring best pairs, descending by score.
// Ties keep processing order.
func (r *Result) TopPairs(n int) []Pair {
	pairs := slices.Clone(r.BestPairs)
	slices.SortStableFunc(pairs, func(a, b Pair) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if n > len(pairs) {
		n = len(pairs)
	}
	return pairs[:n]
}

// Options contains configuration options for the matching engine.
type Options struct {
	// Threshold is the minimum similarity for a candidate to be accepted.
	Threshold float32

	// Replacement controls whether a treatment unit may be matched to
	// multiple control units (true) or consumed by the first match (false).
	Replacement bool

	// Distance selects the matching mode. DistanceNone passes both groups
	// through unchanged.
	Distance Distance

	// Perm generates the control processing order for one run. The order
	// decides which control unit gets first claim on a contested treatment
	// unit, so it must be a fresh random permutation unless a test supplies
	// a fixed one. If nil, a time-seeded generator is used.
	Perm func(n int) []int

	// Parallelism bounds concurrent index queries in with-replacement
	// mode. Without-replacement matching is always sequential. If <= 0,
	// GOMAXPROCS is used.
	Parallelism int
}

// DefaultOptions contains the default configuration options for the engine.
var DefaultOptions = Options{
	Threshold:   0,
	Replacement: false,
	Distance:    DistanceCosine,
}

// WithRand makes the engine draw processing orders from r.
func WithRand(r *rand.Rand) func(o *Options) {
	return func(o *Options) {
		o.Perm = r.Perm
	}
}

// Matcher pairs control units with similar treatment units.
//
// A Matcher may be reused for multiple runs; each run creates fresh state.
// Runs on the same Matcher must not overlap because the default permutation
// source is not safe for concurrent use.
type Matcher struct {
	treatment []cohort.Unit
	control   []cohort.Unit
	index     Index
	opts      Options
}

// New creates a matching engine over a partitioned population.
// idx must be built over groups.Treatment in order; it may be nil when
// opts.Distance is DistanceNone.
func New(groups cohort.Groups, idx Index, optFns ...func(o *Options)) (*Matcher, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	switch opts.Distance {
	case DistanceNone, DistanceCosine:
	default:
		return nil, &ErrUnsupportedDistance{Mode: opts.Distance.String()}
	}

	if len(groups.Treatment) == 0 {
		return nil, &ErrEmptyGroup{Group: "treatment"}
	}
	if len(groups.Control) == 0 {
		return nil, &ErrEmptyGroup{Group: "control"}
	}

	if opts.Distance == DistanceCosine {
		if idx == nil {
			return nil, fmt.Errorf("match: cosine matching requires an index")
		}
		if idx.Len() != len(groups.Treatment) {
			return nil, &ErrIndexSizeMismatch{Treatment: len(groups.Treatment), Indexed: idx.Len()}
		}
	}

	if opts.Perm == nil {
		opts.Perm = rand.New(rand.NewSource(time.Now().UnixNano())).Perm
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}

	return &Matcher{
		treatment: groups.Treatment,
		control:   groups.Control,
		index:     idx,
		opts:      opts,
	}, nil
}

// Match runs one matching pass and returns its result.
func (m *Matcher) Match(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if m.opts.Distance == DistanceNone {
		return m.passThrough(), nil
	}

	if m.opts.Replacement {
		return m.matchWithReplacement(ctx)
	}
	return m.matchWithoutReplacement(ctx)
}

// passThrough returns both groups unchanged, the uncorrected reference point.
func (m *Matcher) passThrough() *Result {
	return &Result{
		MatchedControls:   cohort.IDs(m.control),
		MatchedTreatments: cohort.IDs(m.treatment),
	}
}

// matchWithoutReplacement processes controls strictly sequentially in
// permutation order: each accepted match removes the treatment unit from the
// candidate pool of every later control unit.
func (m *Matcher) matchWithoutReplacement(ctx context.Context) (*Result, error) {
	perm := m.opts.Perm(len(m.control))
	state := newMatchState()
	result := &Result{
		BestPairs: make([]Pair, 0, len(perm)),
	}

	for _, ci := range perm {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c := m.control[ci]
		candidates, err := m.rankedCandidates(c.Vector)
		if err != nil {
			return nil, err
		}

		result.BestPairs = append(result.BestPairs, Pair{
			ControlID:   c.ID,
			TreatmentID: m.treatment[candidates[0].Row].ID,
			Score:       candidates[0].Score,
		})

		// First unclaimed candidate in rank order. An exhausted list
		// is an expected per-unit outcome, not an error.
		selected, ok := m.firstUnclaimed(candidates, state)
		if !ok || selected.Score < m.opts.Threshold {
			state.unmatched++
			continue
		}

		state.claim(selected.Row)
		m.record(result, c.ID, selected)
	}

	result.UnmatchedControls = state.unmatched
	return result, nil
}

func (m *Matcher) firstUnclaimed(candidates []index.Candidate, state *matchState) (index.Candidate, bool) {
	for _, cand := range candidates {
		if !state.isClaimed(cand.Row) {
			return cand, true
		}
	}
	return index.Candidate{}, false
}

func (m *Matcher) record(result *Result, controlID string, cand index.Candidate) {
	treatmentID := m.treatment[cand.Row].ID
	result.Records = append(result.Records, Record{
		ControlID:   controlID,
		TreatmentID: treatmentID,
		Score:       cand.Score,
	})
	result.MatchedControls = append(result.MatchedControls, controlID)
	result.MatchedTreatments = append(result.MatchedTreatments, treatmentID)
}

// rankedCandidates queries the index and sorts the candidates by similarity
// descending, ties broken by ascending treatment row for deterministic
// ranking.
func (m *Matcher) rankedCandidates(q []float32) ([]index.Candidate, error) {
	scan, err := m.index.Scan(q)
	if err != nil {
		return nil, err
	}

	candidates := make([]index.Candidate, 0, m.index.Len())
	for row, score := range scan {
		candidates = append(candidates, index.Candidate{Row: row, Score: score})
	}

	slices.SortFunc(candidates, func(a, b index.Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return a.Row - b.Row
		}
	})

	return candidates, nil
}
