package reconcile

import (
	"slices"

	"cuesplice/internal/config"
)

// Params holds the reconcile tunables in seconds.
type Params struct {
	// MatchWindowEarly is how far before a subtitle's end a change point may
	// land and still be taken as its end.
	MatchWindowEarly float64
	// MatchWindowLate is how far after the end a change point may land.
	MatchWindowLate float64
	// TimestampOffset is added to a candidate each time it is examined.
	TimestampOffset float64
	// StartNudge is subtracted from the start of the first replaced subtitle in a run.
	StartNudge float64
}

// DefaultParams returns the stock reconcile tunables.
func DefaultParams() Params {
	return Params{
		MatchWindowEarly: 0.25,
		MatchWindowLate:  1.5,
		TimestampOffset:  0.05,
		StartNudge:       0.1,
	}
}

// ParamsFromTuning picks the reconcile fields out of the config tuning set.
func ParamsFromTuning(t config.Tuning) Params {
	return Params{
		MatchWindowEarly: t.MatchWindowEarly,
		MatchWindowLate:  t.MatchWindowLate,
		TimestampOffset:  t.TimestampOffset,
		StartNudge:       t.StartNudge,
	}
}

// ReplacementSet is the set of subtitle indices whose footage is replaced.
type ReplacementSet map[int]struct{}

// NewReplacementSet builds a set from indices. Duplicates collapse.
func NewReplacementSet(indices ...int) ReplacementSet {
	set := make(ReplacementSet, len(indices))
	for _, idx := range indices {
		set[idx] = struct{}{}
	}
	return set
}

// Contains reports whether idx is replaced. A nil set contains nothing.
func (s ReplacementSet) Contains(idx int) bool {
	_, ok := s[idx]
	return ok
}

// Add inserts idx.
func (s ReplacementSet) Add(idx int) {
	s[idx] = struct{}{}
}

// Sorted returns the members in ascending order.
func (s ReplacementSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for idx := range s {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}
