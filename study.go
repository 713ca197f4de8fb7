package matchgo

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/matchgo/blobstore"
	"github.com/hupe1980/matchgo/cohort"
	"github.com/hupe1980/matchgo/dataset"
	"github.com/hupe1980/matchgo/index"
	"github.com/hupe1980/matchgo/match"
	"github.com/hupe1980/matchgo/stats"
)

// Config is the matching configuration surface of a study.
type Config struct {
	// Threshold is the minimum similarity for an accepted match.
	Threshold float32

	// Replacement controls whether a treatment unit may be reused across
	// multiple control matches.
	Replacement bool

	// Distance selects the matching mode: match.DistanceCosine for
	// corrected comparison, match.DistanceNone for the uncorrected
	// baseline.
	Distance match.Distance
}

// Report is the observable outcome of a study run.
type Report struct {
	// TreatmentSize and ControlSize are the partition sizes before
	// matching.
	TreatmentSize int
	ControlSize   int

	// UnmatchedControls counts control units dropped by the threshold or
	// by claim exhaustion. Always 0 in baseline mode.
	UnmatchedControls int

	// TopPairs holds the highest-similarity (control, treatment) pairs,
	// descending by score. Empty in baseline mode.
	TopPairs []match.Pair

	// Effect holds the return rates over the matched groups (or the full
	// groups in baseline mode).
	Effect stats.Effect

	// RelativeIncrease is (P_t - P_c) / P_c. It is undefined when the
	// control rate is zero; RelativeIncreaseDefined reports which.
	RelativeIncrease        float64
	RelativeIncreaseDefined bool
}

// Study runs the full estimation pipeline over a loaded population:
// partition, index, match, aggregate.
type Study struct {
	units  []cohort.Unit
	config Config
	opts   options
}

// New creates a study over an in-memory population.
func New(units []cohort.Unit, config Config, optFns ...Option) *Study {
	return &Study{
		units:  units,
		config: config,
		opts:   applyOptions(optFns),
	}
}

// Open loads the covariate and outcome stores from a blobstore and creates
// a study over the joined population.
func Open(ctx context.Context, store blobstore.BlobStore, covariateName, outcomeName string, config Config, optFns ...Option) (*Study, error) {
	units, _, err := dataset.Load(ctx, store, covariateName, outcomeName)
	if err != nil {
		return nil, translateError(err)
	}
	return New(units, config, optFns...), nil
}

// Run executes one study pass and returns its report.
//
// Fatal conditions are invalid input (empty group, dimensionality mismatch,
// unknown units) and an unsupported distance mode; per-unit matching misses
// are folded into the unmatched count, never errors.
func (s *Study) Run(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Reject bad distance modes before any computation.
	switch s.config.Distance {
	case match.DistanceNone, match.DistanceCosine:
	default:
		return nil, translateError(&match.ErrUnsupportedDistance{Mode: s.config.Distance.String()})
	}

	start := time.Now()
	groups := cohort.Partition(s.units)
	s.opts.metrics.RecordPartition(len(groups.Treatment), len(groups.Control), time.Since(start))
	s.opts.logger.LogPartition(ctx, len(groups.Treatment), len(groups.Control))

	result, err := s.runMatch(ctx, groups)
	if err != nil {
		return nil, translateError(err)
	}

	start = time.Now()
	effect, err := stats.Rates(result.MatchedTreatments, result.MatchedControls, cohort.Outcomes(s.units))
	s.opts.metrics.RecordAggregate(time.Since(start), err)
	s.opts.logger.LogAggregate(ctx, effect, err)
	if err != nil {
		return nil, translateError(err)
	}

	report := &Report{
		TreatmentSize:     len(groups.Treatment),
		ControlSize:       len(groups.Control),
		UnmatchedControls: result.UnmatchedControls,
		TopPairs:          result.TopPairs(s.opts.topK),
		Effect:            effect,
	}

	// A zero control rate leaves the relative effect undefined; the report
	// carries that explicitly instead of an Inf or zero value.
	if increase, err := effect.RelativeIncrease(); err == nil {
		report.RelativeIncrease = increase
		report.RelativeIncreaseDefined = true
	} else if !errors.Is(err, stats.ErrDivisionByZero) {
		return nil, translateError(err)
	}

	s.opts.logger.LogTopPairs(ctx, report.TopPairs)

	return report, nil
}

func (s *Study) runMatch(ctx context.Context, groups cohort.Groups) (*match.Result, error) {
	var idx match.Index

	if s.config.Distance == match.DistanceCosine {
		if len(groups.Treatment) == 0 {
			return nil, &match.ErrEmptyGroup{Group: "treatment"}
		}
		dimension := len(groups.Treatment[0].Vector)

		cosine, err := index.NewCosine(cohort.Vectors(groups.Treatment), dimension)
		if err != nil {
			return nil, err
		}
		idx = cosine
	}

	matcher, err := match.New(groups, idx, func(o *match.Options) {
		o.Threshold = s.config.Threshold
		o.Replacement = s.config.Replacement
		o.Distance = s.config.Distance
		if s.opts.perm != nil {
			o.Perm = s.opts.perm
		}
		if s.opts.parallelism > 0 {
			o.Parallelism = s.opts.parallelism
		}
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := matcher.Match(ctx)
	if err != nil {
		s.opts.metrics.RecordMatch(0, 0, time.Since(start), err)
		s.opts.logger.LogMatch(ctx, 0, 0, err)
		return nil, err
	}
	s.opts.metrics.RecordMatch(len(result.Records), result.UnmatchedControls, time.Since(start), nil)
	s.opts.logger.LogMatch(ctx, len(result.Records), result.UnmatchedControls, nil)

	return result, nil
}
