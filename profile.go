package daat

// Profile carries the per-query diagnostic counters the engine accumulates
// while answering one query. This replaces the process-wide instrumentation
// globals of the traversal it is modeled on with a value scoped to a single
// query, so concurrent queries never share mutable counters.
type Profile struct {
	PostingsEvaluated  uint64
	DocsFullyEvaluated uint64
	DocsAddedToHeap    uint64
	FinalThreshold     float64
	NegationPassed     uint64
	NegationFailed     uint64

	uniquePivots map[uint32]struct{}
}

func newProfile() *Profile {
	return &Profile{uniquePivots: make(map[uint32]struct{})}
}

func (p *Profile) notePivot(docID uint32) {
	p.uniquePivots[docID] = struct{}{}
}

// UniquePivots reports the number of distinct documents selected as a
// disjunctive pivot over the course of the query.
func (p *Profile) UniquePivots() int {
	return len(p.uniquePivots)
}

// UnionStats reports, for a query's disjunctive and negated term sets, the
// size of each union and their intersection — a diagnostic for how
// aggressively negation prunes a given query.
type UnionStats struct {
	Disjunctive  int
	Negated      int
	Intersection int
}
