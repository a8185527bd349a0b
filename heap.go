package daat

import "container/heap"

// ScoredDoc is a single top-k result: a document id and its accumulated
// score.
type ScoredDoc struct {
	DocID uint32
	Score float64
}

// resultHeap is a min-heap of ScoredDoc ordered by ascending score, with
// ascending docid as the tiebreak, so its root is the weakest result
// currently held.
type resultHeap []ScoredDoc

func (h resultHeap) Len() int { return len(h) }
func (h resultHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].DocID < h[j].DocID
}
func (h resultHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x any) { *h = append(*h, x.(ScoredDoc)) }

func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// topKHeap bounds a resultHeap at k entries. It implements the strict
// less-than replacement rule from the traversal this is modeled on: once
// full, a candidate only displaces the current minimum when it scores
// strictly higher.
type topKHeap struct {
	k int
	h resultHeap
}

func newTopKHeap(k int) *topKHeap {
	return &topKHeap{k: k, h: make(resultHeap, 0, k)}
}

// offer inserts doc if there is still room, or if doc beats the current
// minimum once full. Reports whether an insertion happened.
func (t *topKHeap) offer(doc ScoredDoc) bool {
	if t.h.Len() < t.k {
		heap.Push(&t.h, doc)
		return true
	}
	if t.h.Len() > 0 && t.h[0].Score < doc.Score {
		heap.Pop(&t.h)
		heap.Push(&t.h, doc)
		return true
	}
	return false
}

// full reports whether the heap holds k entries.
func (t *topKHeap) full() bool { return t.h.Len() == t.k }

// len reports how many entries the heap currently holds.
func (t *topKHeap) len() int { return t.h.Len() }

// threshold returns the current minimum score held, or 0 if empty.
func (t *topKHeap) threshold() float64 {
	if t.h.Len() == 0 {
		return 0
	}
	return t.h[0].Score
}

// drain empties the heap into a slice ordered by descending score (best
// result first).
func (t *topKHeap) drain() []ScoredDoc {
	out := make([]ScoredDoc, t.h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&t.h).(ScoredDoc)
	}
	return out
}
