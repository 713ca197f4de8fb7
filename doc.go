// Package matchgo estimates the causal effect of a binary treatment on a
// binary outcome from observational data.
//
// Because treatment assignment is not randomized, matchgo corrects for
// confounding by matching each control unit to a similar treatment unit on
// observed covariates (cosine similarity), then comparing return rates
// between the matched groups.
//
// The pipeline is: partition the population into treatment/control by the
// feedback signal, build a read-only cosine index over the treatment
// covariate matrix, greedily match controls in random order subject to a
// similarity threshold and a replacement policy, and aggregate outcome
// rates over the matched groups.
//
// # Quick Start
//
// Load a study from covariate and outcome files and run it:
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore("./data")
//
//	study, err := matchgo.Open(ctx, store, "covariates.csv", "outcomes.csv", matchgo.Config{
//	    Threshold:   0.9,
//	    Replacement: false,
//	    Distance:    match.DistanceCosine,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := study.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("P(return|treatment)=%.3f P(return|control)=%.3f\n",
//	    report.Effect.PTreatment, report.Effect.PControl)
//
// Use match.DistanceNone for the uncorrected baseline comparison.
//
// # Matching Policies
//
// Without replacement (the default) a treatment unit is consumed by its
// first match; the random processing order decides contested claims, so
// results vary run to run unless a seeded generator is supplied via
// WithRand. With replacement every control unit independently matches its
// single best candidate.
//
// # Storage Backends
//
// Datasets are fetched through the blobstore abstraction: local filesystem,
// in-memory, MinIO, or S3, optionally compressed (.gz, .zst, .lz4).
package matchgo
