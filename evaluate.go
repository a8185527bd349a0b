package daat

// evaluatePivot fully scores the pivot document — ls.Lists[0]'s docid —
// accumulating contributions from every cursor currently aligned on it. The
// potential (upper-bound) score is refined after each contribution by
// subtracting that list's global max score (the WAND flavor of refinement),
// letting evaluation stop scoring as soon as the refined bound can no longer
// beat threshold. Every cursor aligned on the pivot is still advanced past
// it, win or lose, so the lists stay useful for the next pivot. Returns the
// new top-k threshold (0 if the heap is not yet full).
func evaluatePivot(ls *ListSet, heap *topKHeap, potential, threshold float64, scorer Scorer, docLength func(uint32) int, prof *Profile) float64 {
	docID := ls.Lists[0].docID()
	length := docLength(docID)
	var docScore float64

	i := 0
	for i < len(ls.Lists) {
		w := ls.Lists[i]
		if w.docID() != docID {
			prof.DocsFullyEvaluated++
			break
		}
		prof.PostingsEvaluated++
		contrib := scorer.Score(w.freq(), length, w.List.IDF)
		docScore += contrib
		potential += contrib
		potential -= w.List.Max
		w.Pos++
		if potential < threshold {
			i++
			for i < len(ls.Lists) && !ls.Lists[i].exhausted() && ls.Lists[i].docID() == docID {
				ls.Lists[i].Pos++
				i++
			}
			break
		}
		i++
	}

	if heap.offer(ScoredDoc{DocID: docID, Score: docScore}) {
		prof.DocsAddedToHeap++
	}

	ls.sortByID()
	if heap.full() {
		prof.FinalThreshold = heap.threshold()
		return heap.threshold()
	}
	return 0
}

// evaluatePivotBMW is the Block-Max flavor of pivot evaluation: identical to
// evaluatePivot, except the potential score is refined by subtracting each
// contributing list's block-max for the block containing docID rather than
// its global list max, which is tighter and prunes more aggressively.
func evaluatePivotBMW(ls *ListSet, heap *topKHeap, potential, threshold float64, scorer Scorer, docLength func(uint32) int, prof *Profile) float64 {
	docID := ls.Lists[0].docID()
	length := docLength(docID)
	var docScore float64

	i := 0
	for i < len(ls.Lists) {
		w := ls.Lists[i]
		if w.docID() != docID {
			prof.DocsFullyEvaluated++
			break
		}
		prof.PostingsEvaluated++
		contrib := scorer.Score(w.freq(), length, w.List.IDF)
		docScore += contrib
		potential += contrib
		bid := w.List.blockContaining(docID)
		if bid < len(w.List.BlockMax) {
			potential -= w.List.BlockMax[bid]
		}
		w.Pos++
		if potential < threshold {
			i++
			for i < len(ls.Lists) && !ls.Lists[i].exhausted() && ls.Lists[i].docID() == docID {
				ls.Lists[i].Pos++
				i++
			}
			break
		}
		i++
	}

	if heap.offer(ScoredDoc{DocID: docID, Score: docScore}) {
		prof.DocsAddedToHeap++
	}

	ls.sortByID()
	if heap.full() {
		prof.FinalThreshold = heap.threshold()
		return heap.threshold()
	}
	return 0
}
