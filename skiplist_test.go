package daat

import (
	"math"
	"testing"
)

func TestPositionOrderingAndSentinels(t *testing.T) {
	a := Position{DocumentID: 1, Offset: 5}
	b := Position{DocumentID: 1, Offset: 10}
	c := Position{DocumentID: 2, Offset: 0}

	if !a.IsBefore(b) || !b.IsBefore(c) {
		t.Fatalf("expected a < b < c, got a=%+v b=%+v c=%+v", a, b, c)
	}
	if !c.IsAfter(b) {
		t.Fatalf("expected c > b")
	}
	if !a.Equals(Position{DocumentID: 1, Offset: 5}) {
		t.Fatalf("expected Equals to hold for identical positions")
	}

	if !BOFDocument.IsBeginning() {
		t.Fatalf("expected BOFDocument.IsBeginning()")
	}
	if !EOFDocument.IsEnd() {
		t.Fatalf("expected EOFDocument.IsEnd()")
	}
	if a.IsBeginning() || a.IsEnd() {
		t.Fatalf("a regular position should be neither beginning nor end")
	}
	if math.IsInf(a.DocumentID, 0) {
		t.Fatalf("a regular DocumentID should not be infinite")
	}
}

func TestSkipListInsertKeepsSortedOrder(t *testing.T) {
	sl := NewSkipList()
	inserted := []Position{
		{DocumentID: 3, Offset: 0},
		{DocumentID: 1, Offset: 5},
		{DocumentID: 1, Offset: 0},
		{DocumentID: 2, Offset: 0},
	}
	for _, p := range inserted {
		sl.Insert(p)
	}

	want := []Position{
		{DocumentID: 1, Offset: 0},
		{DocumentID: 1, Offset: 5},
		{DocumentID: 2, Offset: 0},
		{DocumentID: 3, Offset: 0},
	}

	it := sl.Iterator()
	var got []Position
	for it.HasNext() {
		got = append(got, it.Next())
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d positions, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equals(want[i]) {
			t.Fatalf("position %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSkipListInsertDuplicateKeyIsIdempotent(t *testing.T) {
	sl := NewSkipList()
	p := Position{DocumentID: 1, Offset: 0}
	sl.Insert(p)
	sl.Insert(p)

	it := sl.Iterator()
	count := 0
	for it.HasNext() {
		it.Next()
		count++
	}
	if count != 1 {
		t.Fatalf("expected exactly one entry for a duplicate key, got %d", count)
	}
}

func TestIteratorOnEmptyListHasNoElements(t *testing.T) {
	sl := NewSkipList()
	it := sl.Iterator()
	if it.HasNext() {
		t.Fatalf("expected an empty skip list to have no elements")
	}
	if got := it.Next(); !got.Equals(EOFDocument) {
		t.Fatalf("expected Next() on an exhausted iterator to return EOFDocument, got %+v", got)
	}
}

func TestSkipListScalesAcrossManyLevels(t *testing.T) {
	sl := NewSkipList()
	const n = 2000
	for i := 0; i < n; i++ {
		sl.Insert(Position{DocumentID: float64(i), Offset: 0})
	}

	it := sl.Iterator()
	prev := -1.0
	count := 0
	for it.HasNext() {
		pos := it.Next()
		if pos.DocumentID <= prev {
			t.Fatalf("iterator produced out-of-order docid %v after %v", pos.DocumentID, prev)
		}
		prev = pos.DocumentID
		count++
	}
	if count != n {
		t.Fatalf("expected %d positions, got %d", n, count)
	}
	if sl.Height <= 1 {
		t.Fatalf("expected skip list height to grow past 1 for %d insertions, got %d", n, sl.Height)
	}
}
