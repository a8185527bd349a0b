package daat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexFileRoundTrip(t *testing.T) {
	original := map[string]*PostingsList{
		"A": toyList("A", []uint32{1, 3, 5, 7}),
		"B": toyList("B", []uint32{2, 3, 6}),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteIndexFile(&buf, original))

	restored, err := ReadIndexFile(&buf)
	require.NoError(t, err)
	require.Len(t, restored, len(original))

	for term, want := range original {
		got, ok := restored[term]
		require.True(t, ok, "missing list for term %q", term)
		require.Equal(t, want.Max, got.Max)
		require.Equal(t, want.IDF, got.IDF)
		require.Equal(t, want.Postings, got.Postings)
		require.Equal(t, want.BlockMax, got.BlockMax)
		require.Equal(t, want.BlockLastID, got.BlockLastID)
		for _, docid := range want.DocIDs.ToArray() {
			require.True(t, got.DocIDs.Contains(docid), "restored bitmap missing docid %d for term %q", docid, term)
		}
	}
}

// TestIndexFileRoundTripPreservesQueryResults checks the round-trip
// requirement end to end: a sealed index written, read back, and queried
// must return identical results to querying the original lists directly.
func TestIndexFileRoundTripPreservesQueryResults(t *testing.T) {
	lists := map[string]*PostingsList{
		"A": toyList("A", []uint32{1, 3, 5, 7}),
		"B": toyList("B", []uint32{2, 3, 6}),
		"C": toyList("C", []uint32{3, 4, 5}),
	}
	dict := toyDict()
	q := termQuery(1, pos(1), pos(2), pos(3))

	before := NewEngine(lists, dict, ImpactScorer{}, nil)
	wantRes, err := before.Search(q, 3, WAND, Disjunctive)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteIndexFile(&buf, lists))

	restoredLists, err := ReadIndexFile(&buf)
	require.NoError(t, err)

	after := NewEngine(restoredLists, dict, ImpactScorer{}, nil)
	gotRes, err := after.Search(q, 3, WAND, Disjunctive)
	require.NoError(t, err)

	require.Equal(t, wantRes.Docs, gotRes.Docs)
}
