package match

import "github.com/RoaringBitmap/roaring/v2"

// matchState is the mutable state of a single matching run: the set of
// already-claimed treatment rows and the running unmatched-control count.
// It is created at the start of a run and discarded at the end; it is never
// shared across runs or goroutines.
type matchState struct {
	claimed   *roaring.Bitmap
	unmatched int
}

func newMatchState() *matchState {
	return &matchState{
		claimed: roaring.New(),
	}
}

func (s *matchState) claim(row int) {
	s.claimed.Add(uint32(row))
}

func (s *matchState) isClaimed(row int) bool {
	return s.claimed.Contains(uint32(row))
}
