package daat

import "testing"

func TestSealBuildsSortedBlockedPostings(t *testing.T) {
	idx := NewInvertedIndex()
	docs := map[int]string{
		1: "red blue red",
		2: "blue green",
		3: "red green green",
	}
	for id := 1; id <= 3; id++ {
		idx.Index(id, docs[id])
	}

	scorer := NewBM25Scorer(DefaultBM25Parameters(), idx.TotalTerms, idx.TotalDocs)
	sealed := Seal(idx, scorer)

	red, ok := sealed["red"]
	if !ok {
		t.Fatalf("expected a sealed list for %q", "red")
	}
	if red.Len() != 2 {
		t.Fatalf("expected 2 postings for %q, got %d", "red", red.Len())
	}
	for i := 1; i < len(red.Postings); i++ {
		if red.Postings[i-1].DocID >= red.Postings[i].DocID {
			t.Fatalf("postings not sorted ascending by docid: %+v", red.Postings)
		}
	}
	if red.Max <= 0 {
		t.Fatalf("expected a positive list upper bound, got %v", red.Max)
	}
	if red.NumBlocks() == 0 {
		t.Fatalf("expected at least one block")
	}
	if red.BlockLastID[red.NumBlocks()-1] != red.Postings[red.Len()-1].DocID {
		t.Fatalf("last block's rep id should equal the list's final docid")
	}
}

func TestBlockContainingFindsFirstCoveringBlock(t *testing.T) {
	pl := &PostingsList{BlockLastID: []uint32{10, 20, 30}}
	cases := []struct {
		docid uint32
		want  int
	}{
		{5, 0}, {10, 0}, {11, 1}, {20, 1}, {21, 2}, {30, 2},
	}
	for _, c := range cases {
		if got := pl.blockContaining(c.docid); got != c.want {
			t.Errorf("blockContaining(%d) = %d, want %d", c.docid, got, c.want)
		}
	}
}

func TestBuildDocLengthsSnapshotsStats(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "quick brown fox")
	lengths := BuildDocLengths(idx)
	if lengths[1] != 3 {
		t.Fatalf("expected doc 1 length 3, got %d", lengths[1])
	}
}
