package daat

import (
	"sort"
	"testing"

	"github.com/RoaringBitmap/roaring"
)

// toyList builds a PostingsList directly from a sorted slice of docids, each
// with frequency 1 and a single block spanning the whole list — matching
// the "uniform freq=1, list upper-bounds all 1.0" toy index scenarios.
func toyList(term string, docids []uint32) *PostingsList {
	postings := make([]Posting, len(docids))
	bitmap := roaring.NewBitmap()
	for i, d := range docids {
		postings[i] = Posting{DocID: d, Freq: 1}
		bitmap.Add(d)
	}
	return &PostingsList{
		Term:        term,
		Postings:    postings,
		DocIDs:      bitmap,
		Max:         1.0,
		IDF:         1.0,
		BlockMax:    []float64{1.0},
		BlockLastID: []uint32{docids[len(docids)-1]},
	}
}

func toyDict() *Dictionary {
	return &Dictionary{
		ids:   map[string]uint64{"A": 1, "B": 2, "C": 3},
		terms: map[uint64]string{1: "A", 2: "B", 3: "C"},
	}
}

func toyEngine() *Engine {
	lists := map[string]*PostingsList{
		"A": toyList("A", []uint32{1, 3, 5, 7}),
		"B": toyList("B", []uint32{2, 3, 6}),
		"C": toyList("C", []uint32{3, 4, 5}),
	}
	return NewEngine(lists, toyDict(), ImpactScorer{}, nil)
}

func termQuery(id uint64, terms ...QueryTerm) Query {
	return Query{ID: id, Terms: terms}
}

func pos(tokenID uint64) QueryTerm { return QueryTerm{TokenID: tokenID, Frequency: 1} }
func neg(tokenID uint64) QueryTerm { return QueryTerm{TokenID: tokenID, Frequency: 1, Negated: true} }

func scores(docs []ScoredDoc) []float64 {
	out := make([]float64, len(docs))
	for i, d := range docs {
		out[i] = d.Score
	}
	return out
}

func docIDs(docs []ScoredDoc) []uint32 {
	out := make([]uint32, len(docs))
	for i, d := range docs {
		out[i] = d.DocID
	}
	return out
}

func TestEngineWANDConjunctive(t *testing.T) {
	e := toyEngine()
	q := termQuery(1, pos(1), pos(2), pos(3))
	res, err := e.Search(q, 3, WAND, Conjunctive)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Docs) != 1 || res.Docs[0].DocID != 3 || res.Docs[0].Score != 3 {
		t.Fatalf("expected single result (3,3), got %+v", res.Docs)
	}
}

func TestEngineWANDDisjunctiveTopK1(t *testing.T) {
	e := toyEngine()
	q := termQuery(2, pos(1), pos(2))
	res, err := e.Search(q, 1, WAND, Disjunctive)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Docs) != 1 || res.Docs[0].DocID != 3 || res.Docs[0].Score != 2 {
		t.Fatalf("expected (3,2), got %+v", res.Docs)
	}
}

func TestEngineBMWDisjunctiveTwoTerms(t *testing.T) {
	e := toyEngine()
	q := termQuery(3, pos(1), pos(2))
	res, err := e.Search(q, 2, BMW, Disjunctive)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Docs) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(res.Docs), res.Docs)
	}
	if res.Docs[0].DocID != 3 || res.Docs[0].Score != 2 {
		t.Fatalf("expected top result (3,2), got %+v", res.Docs[0])
	}
	if res.Docs[1].Score != 1 {
		t.Fatalf("expected second result to have score 1, got %+v", res.Docs[1])
	}
}

func TestEngineWANDDisjunctiveWithNegation(t *testing.T) {
	e := toyEngine()
	q := termQuery(4, pos(1), neg(2))
	res, err := e.Search(q, 4, WAND, Disjunctive)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	got := docIDs(res.Docs)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []uint32{1, 5, 7}
	if len(got) != len(want) {
		t.Fatalf("expected docids %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected docids %v, got %v", want, got)
		}
	}
	for _, d := range res.Docs {
		if d.DocID == 3 {
			t.Fatalf("negated document 3 leaked into results: %+v", res.Docs)
		}
		if d.Score != 1 {
			t.Fatalf("expected every surviving result to score 1, got %+v", d)
		}
	}
}

func TestEngineBMWDisjunctiveThetaPush(t *testing.T) {
	e := toyEngine()
	e.F = 2.0
	q := termQuery(5, pos(1), pos(2), pos(3))
	res, err := e.Search(q, 3, BMW, Disjunctive)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Docs) == 0 || res.Docs[0].DocID != 3 || res.Docs[0].Score != 3 {
		t.Fatalf("expected top result (3,3) even under theta-push, got %+v", res.Docs)
	}
}

// TestEngineSafetyUnderF1 checks invariant 4: under F=1.0 and no negation,
// both disjunctive strategies (WAND-OR and BMW-OR) return the same top-3
// scores as a brute-force scorer over the full union.
func TestEngineSafetyUnderF1(t *testing.T) {
	bruteForce := map[uint32]float64{}
	for _, docs := range [][]uint32{{1, 3, 5, 7}, {2, 3, 6}, {3, 4, 5}} {
		for _, d := range docs {
			bruteForce[d]++
		}
	}
	var all []float64
	for _, s := range bruteForce {
		all = append(all, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(all)))
	top3 := all[:3]

	for _, tc := range []struct {
		name      string
		form      IndexForm
		traversal Traversal
	}{
		{"wand-or", WAND, Disjunctive},
		{"bmw-or", BMW, Disjunctive},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := toyEngine()
			q := termQuery(6, pos(1), pos(2), pos(3))
			res, err := e.Search(q, 3, tc.form, tc.traversal)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			got := scores(res.Docs)
			if len(got) != len(top3) {
				t.Fatalf("expected %d results, got %d", len(top3), len(got))
			}
			for i := range top3 {
				if got[i] != top3[i] {
					t.Fatalf("result %d: expected score %v, got %v (full: %+v)", i, top3[i], got[i], res.Docs)
				}
			}
		})
	}
}

func TestEngineUnknownTermError(t *testing.T) {
	e := toyEngine()
	q := termQuery(7, QueryTerm{TokenID: 99, Token: "ghost", Frequency: 1})
	if _, err := e.Search(q, 3, WAND, Disjunctive); err == nil {
		t.Fatalf("expected an error for an unknown term")
	}
}
