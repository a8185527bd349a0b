package daat

// pivotResult is what pivot selection returns: the index of the pivot
// within a docid-sorted ListSet, its docid, and the accumulated
// upper-bound ("potential") score through the pivot. Index equals
// len(ls.Lists) when no pivot could be found (the query is exhausted).
type pivotResult struct {
	Index int
	DocID uint32
	Score float64
}

func noPivot(n int) pivotResult { return pivotResult{Index: n} }

func (p pivotResult) found(n int) bool { return p.Index < n }

// determineCandidateConjunctive always returns the last live list as the
// pivot: in a conjunctive (AND) query it is the only document that could
// possibly carry every term, since every list is sorted by docid and the
// last list is the furthest along. The potential score is the query's
// pre-summed conjunctive upper bound.
func determineCandidateConjunctive(ls *ListSet, conjunctiveMax float64) pivotResult {
	live := ls.liveCount()
	if live == 0 {
		return noPivot(len(ls.Lists))
	}
	idx := live - 1
	return pivotResult{Index: idx, DocID: ls.Lists[idx].docID(), Score: conjunctiveMax}
}

// determineCandidateDisjunctive walks the docid-sorted live lists,
// accumulating list upper bounds, until the running sum exceeds
// threshold*F (theta-push). It then extends the pivot through any
// following lists tied on the same docid, since those contribute to the
// same candidate document.
func determineCandidateDisjunctive(ls *ListSet, threshold, f float64, prof *Profile) pivotResult {
	threshold *= f
	live := ls.liveCount()
	var score float64
	for i := 0; i < live; i++ {
		score += ls.Lists[i].List.Max
		if score > threshold {
			pivotID := ls.Lists[i].docID()
			for i+1 < live && ls.Lists[i+1].docID() == pivotID {
				i++
				score += ls.Lists[i].List.Max
			}
			prof.notePivot(pivotID)
			return pivotResult{Index: i, DocID: pivotID, Score: score}
		}
	}
	return noPivot(len(ls.Lists))
}
