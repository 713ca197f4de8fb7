package match

import (
	"context"

	"github.com/hupe1980/matchgo/index"
	"golang.org/x/sync/errgroup"
)

// matchWithReplacement matches every control unit against its single best
// candidate. No claims are tracked, so each control unit's decision is
// independent of every other and the index queries can fan out in parallel.
// Results are folded in permutation order to keep output deterministic for a
// fixed permutation.
func (m *Matcher) matchWithReplacement(ctx context.Context) (*Result, error) {
	perm := m.opts.Perm(len(m.control))

	best := make([]index.Candidate, len(perm))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Parallelism)

	for i, ci := range perm {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			candidates, err := m.rankedCandidates(m.control[ci].Vector)
			if err != nil {
				return err
			}
			best[i] = candidates[0]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		BestPairs: make([]Pair, 0, len(perm)),
	}

	for i, ci := range perm {
		c := m.control[ci]
		cand := best[i]

		result.BestPairs = append(result.BestPairs, Pair{
			ControlID:   c.ID,
			TreatmentID: m.treatment[cand.Row].ID,
			Score:       cand.Score,
		})

		if cand.Score < m.opts.Threshold {
			result.UnmatchedControls++
			continue
		}
		m.record(result, c.ID, cand)
	}

	return result, nil
}
