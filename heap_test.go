package daat

import "testing"

func TestTopKHeapFillsThenReplacesStrictlyGreater(t *testing.T) {
	h := newTopKHeap(2)

	if !h.offer(ScoredDoc{DocID: 1, Score: 1}) {
		t.Fatalf("expected insertion while heap has room")
	}
	if !h.offer(ScoredDoc{DocID: 2, Score: 1}) {
		t.Fatalf("expected insertion while heap has room")
	}
	if !h.full() {
		t.Fatalf("expected heap to be full at k=2")
	}

	// A candidate tying the current minimum must not be inserted.
	if h.offer(ScoredDoc{DocID: 3, Score: 1}) {
		t.Fatalf("a tying score must not displace the current minimum")
	}

	// A strictly greater score must displace the minimum.
	if !h.offer(ScoredDoc{DocID: 4, Score: 5}) {
		t.Fatalf("a strictly greater score must displace the minimum")
	}

	docs := h.drain()
	if len(docs) != 2 {
		t.Fatalf("expected 2 results after drain, got %d", len(docs))
	}
	if docs[0].Score < docs[1].Score {
		t.Fatalf("expected drain in descending score order, got %+v", docs)
	}
	if docs[0].DocID != 4 {
		t.Fatalf("expected the replacement doc to rank first, got %+v", docs)
	}
}

func TestTopKHeapDocidTiebreak(t *testing.T) {
	h := newTopKHeap(3)
	h.offer(ScoredDoc{DocID: 5, Score: 1})
	h.offer(ScoredDoc{DocID: 2, Score: 1})
	h.offer(ScoredDoc{DocID: 9, Score: 1})

	if h.threshold() != 1 {
		t.Fatalf("expected threshold 1, got %v", h.threshold())
	}
	// Among tied scores the comparator puts the smallest docid at the root.
	if h.h[0].DocID != 2 {
		t.Fatalf("expected docid 2 at the heap root among tied scores, got %+v", h.h[0])
	}

	docs := h.drain()
	if len(docs) != 3 {
		t.Fatalf("expected 3 results, got %d", len(docs))
	}
	for _, d := range docs {
		if d.Score != 1 {
			t.Fatalf("expected every result to keep score 1, got %+v", d)
		}
	}
}

func TestTopKHeapThresholdZeroWhenEmpty(t *testing.T) {
	h := newTopKHeap(3)
	if h.threshold() != 0 {
		t.Fatalf("expected threshold 0 for an empty heap, got %v", h.threshold())
	}
	if h.full() {
		t.Fatalf("an empty heap must not report full")
	}
}
