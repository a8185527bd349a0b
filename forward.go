package daat

// findShortestList returns, among ls.Lists[0:end], the index of the cursor
// with the fewest postings remaining, excluding any cursor already sitting
// on id — that one has nothing to gain from being advanced. This is the
// cheapest cursor to move forward.
func findShortestList(ls *ListSet, end int, id uint32) int {
	best := 0
	smallest := -1
	for i := 0; i < end; i++ {
		w := ls.Lists[i]
		remaining := len(w.List.Postings) - w.Pos
		if w.docID() != id && (smallest == -1 || remaining < smallest) {
			smallest = remaining
			best = i
		}
	}
	return best
}

// bubbleDown restores docid order after advancing the cursor at idx, by
// swapping it forward past any cursor it has overtaken.
func bubbleDown(ls *ListSet, idx int) {
	n := len(ls.Lists)
	for idx+1 < n && ls.Lists[idx].docID() > ls.Lists[idx+1].docID() {
		ls.Lists[idx], ls.Lists[idx+1] = ls.Lists[idx+1], ls.Lists[idx]
		idx++
	}
}

// forwardLists is the WAND forwarding step: advance the cheapest cursor
// among the lists preceding the pivot directly to id, then re-sort locally.
func forwardLists(ls *ListSet, pivotIndex int, id uint32) {
	idx := findShortestList(ls, pivotIndex, id)
	ls.Lists[idx].skipToID(id)
	if ls.Lists[idx].exhausted() {
		ls.sortByID()
		return
	}
	bubbleDown(ls, idx)
}

// forwardListsBMW is the Block-Max WAND shallow-forwarding step. Rather
// than skipping straight to docID, it looks up — without decompressing —
// the last id of the block that would hold docID in each pre-pivot-or-pivot
// list, and advances the cheapest cursor only as far as the smallest such
// block boundary plus one. This window is exactly [0, pivotIndex+1): it
// must include the pivot list itself, since the pivot's own block
// configuration can also become stale.
func forwardListsBMW(ls *ListSet, pivotIndex int, docID uint32) {
	end := pivotIndex + 1
	idx := findShortestList(ls, end, docID)

	candidateID := notFound
	for i := 0; i < end; i++ {
		w := ls.Lists[i]
		bid := w.List.blockContaining(docID)
		blockCandidate := notFound
		if bid < len(w.List.BlockLastID) {
			blockCandidate = w.List.BlockLastID[bid] + 1
		}
		if blockCandidate < candidateID {
			candidateID = blockCandidate
		}
	}
	// If the pivot was not the last list, the smallest docid among the
	// remaining lists must also be considered, or safe-to-k results are
	// lost.
	if end < len(ls.Lists) {
		if next := ls.Lists[end].docID(); next < candidateID {
			candidateID = next
		}
	}
	if candidateID < docID {
		candidateID = docID + 1
	}

	ls.Lists[idx].skipToID(candidateID)
	if ls.Lists[idx].exhausted() {
		ls.sortByID()
		return
	}
	bubbleDown(ls, idx)
}
