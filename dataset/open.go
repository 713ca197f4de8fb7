package dataset

import (
	"context"

	"github.com/hupe1980/matchgo/blobstore"
	"github.com/hupe1980/matchgo/cohort"
)

// OpenCovariates fetches and parses a covariate blob, decompressing by
// extension (.gz, .zst, .lz4).
func OpenCovariates(ctx context.Context, store blobstore.BlobStore, name string) ([]Covariate, int, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	dr, err := newDecompressor(name, rc)
	if err != nil {
		return nil, 0, err
	}
	defer dr.Close()

	return ReadCovariates(dr)
}

// OpenOutcomes fetches and parses an outcome blob, decompressing by
// extension (.gz, .zst, .lz4).
func OpenOutcomes(ctx context.Context, store blobstore.BlobStore, name string) (map[string]Outcome, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dr, err := newDecompressor(name, rc)
	if err != nil {
		return nil, err
	}
	defer dr.Close()

	return ReadOutcomes(dr)
}

// Load fetches both stores and joins them into study units.
// It returns the units and the covariate dimensionality.
func Load(ctx context.Context, store blobstore.BlobStore, covariateName, outcomeName string) ([]cohort.Unit, int, error) {
	covariates, dimension, err := OpenCovariates(ctx, store, covariateName)
	if err != nil {
		return nil, 0, err
	}

	outcomes, err := OpenOutcomes(ctx, store, outcomeName)
	if err != nil {
		return nil, 0, err
	}

	units, err := Join(covariates, outcomes)
	if err != nil {
		return nil, 0, err
	}

	return units, dimension, nil
}
