package daat

import (
	"fmt"
	"log/slog"
)

// IndexForm selects the dynamic-pruning family: plain WAND or Block-Max
// WAND, which additionally prunes using per-block upper bounds.
type IndexForm int

const (
	WAND IndexForm = iota
	BMW
)

func (f IndexForm) String() string {
	if f == BMW {
		return "bmw"
	}
	return "wand"
}

// Traversal selects whether a query requires every term (Conjunctive) or
// any term (Disjunctive).
type Traversal int

const (
	Disjunctive Traversal = iota
	Conjunctive
)

func (t Traversal) String() string {
	if t == Conjunctive {
		return "and"
	}
	return "or"
}

// NegationOrder selects where, in a BMW disjunctive query, the negation
// check is made relative to the block-max candidate test.
type NegationOrder int

const (
	// BlockMaxFirst tests block-max bounds before consulting negated
	// terms, avoiding the negation walk entirely for candidates the
	// block-max test would already reject.
	BlockMaxFirst NegationOrder = iota
	// NegationFirst consults negated terms before the block-max test,
	// so a negated candidate never pays for a block-max evaluation.
	NegationFirst
)

// Engine answers top-k queries over a sealed collection of PostingsLists
// using WAND or Block-Max WAND dynamic pruning, in disjunctive or
// conjunctive mode, with optional negated terms.
type Engine struct {
	Lists      map[string]*PostingsList
	Dict       *Dictionary
	Scorer     Scorer
	DocLengths map[uint32]int

	// F is the theta-push multiplier applied to the disjunctive pivot
	// threshold; 1.0 keeps results exactly top-k safe, values above 1.0
	// trade safety for more aggressive pruning.
	F float64

	// NegationOrder selects the v1/v2 ordering used by BMW disjunctive
	// queries that carry negated terms.
	NegationOrder NegationOrder

	// OnThresholdChange, if set, is invoked after every pivot evaluation
	// (once the heap holds at least one entry, whether or not that
	// evaluation changed the heap) with the query id and the current
	// top-k threshold — an idiomatic substitute for a compile-time
	// per-document trace.
	OnThresholdChange func(queryID uint64, threshold float64)
}

// NewEngine builds an Engine ready to serve queries against a sealed
// PostingsList collection, with theta-push disabled (F = 1.0) by default.
func NewEngine(lists map[string]*PostingsList, dict *Dictionary, scorer Scorer, docLengths map[uint32]int) *Engine {
	return &Engine{
		Lists:      lists,
		Dict:       dict,
		Scorer:     scorer,
		DocLengths: docLengths,
		F:          1.0,
	}
}

func (e *Engine) docLength(id uint32) int { return e.DocLengths[id] }

func (e *Engine) noteThreshold(queryID uint64, h *topKHeap) {
	if e.OnThresholdChange != nil && h.len() > 0 {
		e.OnThresholdChange(queryID, h.threshold())
	}
}

// Result is a query's top-k answer plus its profiling counters.
type Result struct {
	QueryID uint64
	Docs    []ScoredDoc
	Profile Profile
}

// Search resolves q's terms against e.Lists and runs the dynamic-pruning
// loop selected by form and traversal, dispatching among the algorithm
// variants the same way the reference traversal's top-level search does.
func (e *Engine) Search(q Query, k int, form IndexForm, traversal Traversal) (Result, error) {
	slog.Info("query starting",
		slog.Uint64("query_id", q.ID), slog.Int("k", k),
		slog.String("form", form.String()), slog.String("traversal", traversal.String()),
		slog.Int("terms", len(q.Terms)))

	var live, negated []*ListWrapper
	var conjunctiveMax float64
	for _, t := range q.Terms {
		term := e.Dict.Term(t.TokenID)
		list, ok := e.Lists[term]
		if !ok {
			return Result{}, fmt.Errorf("%w: %q", ErrUnknownTerm, term)
		}
		w := newListWrapper(list, t.Negated)
		if t.Negated {
			negated = append(negated, w)
		} else {
			live = append(live, w)
			conjunctiveMax += list.Max
		}
	}
	if len(live) == 0 {
		return Result{}, ErrEmptyQuery
	}

	ls := &ListSet{Lists: live}
	neg := &negationSet{Lists: negated}
	prof := newProfile()

	var h *topKHeap
	switch {
	case form == BMW && traversal == Disjunctive && len(negated) == 0:
		h = e.processBMWDisjunctive(ls, k, prof, q.ID)
	case form == BMW && traversal == Disjunctive && len(negated) > 0 && e.NegationOrder == NegationFirst:
		h = e.processBMWDisjunctiveV2(ls, neg, k, prof, q.ID)
	case form == BMW && traversal == Disjunctive && len(negated) > 0:
		h = e.processBMWDisjunctiveV1(ls, neg, k, prof, q.ID)
	case form == BMW && traversal == Conjunctive:
		h = e.processBMWConjunctive(ls, k, prof, q.ID, conjunctiveMax)
	case form == WAND && traversal == Disjunctive && len(negated) == 0:
		h = e.processWANDDisjunctive(ls, k, prof, q.ID)
	case form == WAND && traversal == Disjunctive && len(negated) > 0:
		h = e.processWANDDisjunctiveNegated(ls, neg, k, prof, q.ID)
	case form == WAND && traversal == Conjunctive:
		h = e.processWANDConjunctive(ls, k, prof, q.ID, conjunctiveMax)
	default:
		return Result{}, fmt.Errorf("unsupported combination: form=%s traversal=%s", form, traversal)
	}

	docs := h.drain()
	slog.Info("query complete", slog.Uint64("query_id", q.ID), slog.Int("results", len(docs)))
	return Result{QueryID: q.ID, Docs: docs, Profile: *prof}, nil
}

// processWANDDisjunctive is the plain WAND disjunctive loop: no negated
// terms, no block-max pruning.
func (e *Engine) processWANDDisjunctive(ls *ListSet, k int, prof *Profile, queryID uint64) *topKHeap {
	h := newTopKHeap(k)
	threshold := 0.0
	ls.sortByID()
	pivot := determineCandidateDisjunctive(ls, threshold, e.F, prof)

	for pivot.found(len(ls.Lists)) {
		if ls.Lists[0].docID() == pivot.DocID {
			threshold = evaluatePivot(ls, h, pivot.Score, threshold, e.Scorer, e.docLength, prof)
			e.noteThreshold(queryID, h)
		} else {
			forwardLists(ls, pivot.Index, pivot.DocID)
		}
		pivot = determineCandidateDisjunctive(ls, threshold, e.F, prof)
	}
	return h
}

// processWANDDisjunctiveNegated is the WAND disjunctive loop extended to
// skip documents carrying a negated term before they are ever scored.
func (e *Engine) processWANDDisjunctiveNegated(ls *ListSet, neg *negationSet, k int, prof *Profile, queryID uint64) *topKHeap {
	h := newTopKHeap(k)
	threshold := 0.0
	ls.sortByID()
	neg.sortByID()
	pivot := determineCandidateDisjunctive(ls, threshold, e.F, prof)

	for pivot.found(len(ls.Lists)) {
		candidateID := pivot.DocID
		negatedDoc := neg.isNegated(candidateID, prof)

		switch {
		case ls.Lists[0].docID() == candidateID && !negatedDoc:
			threshold = evaluatePivot(ls, h, pivot.Score, threshold, e.Scorer, e.docLength, prof)
			e.noteThreshold(queryID, h)
		case negatedDoc:
			forwardLists(ls, pivot.Index, candidateID+1)
		default:
			forwardLists(ls, pivot.Index, candidateID)
		}
		pivot = determineCandidateDisjunctive(ls, threshold, e.F, prof)
	}
	return h
}

// processWANDConjunctive is the WAND conjunctive (AND) loop: every term
// must be present, so the pivot is always the furthest-along list, and the
// loop stops the moment any list runs dry.
func (e *Engine) processWANDConjunctive(ls *ListSet, k int, prof *Profile, queryID uint64, conjunctiveMax float64) *topKHeap {
	h := newTopKHeap(k)
	threshold := 0.0
	if ls.sortByID() > 0 {
		return h
	}
	pivot := determineCandidateConjunctive(ls, conjunctiveMax)

	for pivot.found(len(ls.Lists)) {
		if ls.Lists[0].docID() == pivot.DocID {
			threshold = evaluatePivot(ls, h, pivot.Score, threshold, e.Scorer, e.docLength, prof)
			e.noteThreshold(queryID, h)
		} else {
			forwardLists(ls, pivot.Index, pivot.DocID)
		}
		if ls.sortByID() > 0 {
			break
		}
		pivot = determineCandidateConjunctive(ls, conjunctiveMax)
	}
	return h
}

// processBMWDisjunctive is the Block-Max WAND disjunctive loop with no
// negated terms: every pivot candidate passes a block-max test before it is
// either scored or used to shallow-forward past a doomed block
// configuration.
func (e *Engine) processBMWDisjunctive(ls *ListSet, k int, prof *Profile, queryID uint64) *topKHeap {
	h := newTopKHeap(k)
	threshold := 0.0
	ls.sortByID()
	pivot := determineCandidateDisjunctive(ls, threshold, e.F, prof)

	for pivot.found(len(ls.Lists)) {
		candidateID := pivot.DocID
		candidate, potential := potentialCandidate(ls, pivot.Index, threshold, candidateID)
		if candidate {
			if ls.Lists[0].docID() == candidateID {
				threshold = evaluatePivotBMW(ls, h, potential, threshold, e.Scorer, e.docLength, prof)
				e.noteThreshold(queryID, h)
			} else {
				forwardLists(ls, pivot.Index, candidateID)
			}
		} else {
			forwardListsBMW(ls, pivot.Index, candidateID)
		}
		pivot = determineCandidateDisjunctive(ls, threshold, e.F, prof)
	}
	return h
}

// processBMWDisjunctiveV1 tests block-max bounds before checking negation
// (the default ordering for a BMW disjunctive query with negated terms).
func (e *Engine) processBMWDisjunctiveV1(ls *ListSet, neg *negationSet, k int, prof *Profile, queryID uint64) *topKHeap {
	h := newTopKHeap(k)
	threshold := 0.0
	ls.sortByID()
	neg.sortByID()
	pivot := determineCandidateDisjunctive(ls, threshold, e.F, prof)

	for pivot.found(len(ls.Lists)) {
		candidateID := pivot.DocID
		candidate, potential := potentialCandidate(ls, pivot.Index, threshold, candidateID)
		if candidate {
			negatedDoc := neg.isNegated(candidateID, prof)
			switch {
			case ls.Lists[0].docID() == candidateID && !negatedDoc:
				threshold = evaluatePivotBMW(ls, h, potential, threshold, e.Scorer, e.docLength, prof)
				e.noteThreshold(queryID, h)
			case negatedDoc:
				forwardLists(ls, pivot.Index, candidateID+1)
			default:
				forwardLists(ls, pivot.Index, candidateID)
			}
		} else {
			forwardListsBMW(ls, pivot.Index, candidateID)
		}
		pivot = determineCandidateDisjunctive(ls, threshold, e.F, prof)
	}
	return h
}

// processBMWDisjunctiveV2 checks negation before the block-max test, so a
// negated candidate is skipped without ever touching its block-max bound.
func (e *Engine) processBMWDisjunctiveV2(ls *ListSet, neg *negationSet, k int, prof *Profile, queryID uint64) *topKHeap {
	h := newTopKHeap(k)
	threshold := 0.0
	ls.sortByID()
	neg.sortByID()
	pivot := determineCandidateDisjunctive(ls, threshold, e.F, prof)

	for pivot.found(len(ls.Lists)) {
		candidateID := pivot.DocID

		if neg.isNegated(candidateID, prof) {
			forwardLists(ls, pivot.Index, candidateID+1)
			pivot = determineCandidateDisjunctive(ls, threshold, e.F, prof)
			continue
		}

		candidate, potential := potentialCandidate(ls, pivot.Index, threshold, candidateID)
		if candidate {
			if ls.Lists[0].docID() == candidateID {
				threshold = evaluatePivotBMW(ls, h, potential, threshold, e.Scorer, e.docLength, prof)
				e.noteThreshold(queryID, h)
			} else {
				forwardLists(ls, pivot.Index, candidateID)
			}
		} else {
			forwardListsBMW(ls, pivot.Index, candidateID)
		}
		pivot = determineCandidateDisjunctive(ls, threshold, e.F, prof)
	}
	return h
}

// processBMWConjunctive is the Block-Max WAND conjunctive (AND) loop.
func (e *Engine) processBMWConjunctive(ls *ListSet, k int, prof *Profile, queryID uint64, conjunctiveMax float64) *topKHeap {
	h := newTopKHeap(k)
	threshold := 0.0
	if ls.sortByID() > 0 {
		return h
	}
	pivot := determineCandidateConjunctive(ls, conjunctiveMax)

	for pivot.found(len(ls.Lists)) {
		candidateID := pivot.DocID
		candidate, potential := potentialCandidate(ls, pivot.Index, threshold, candidateID)
		if candidate {
			if ls.Lists[0].docID() == candidateID {
				threshold = evaluatePivotBMW(ls, h, potential, threshold, e.Scorer, e.docLength, prof)
				e.noteThreshold(queryID, h)
			} else {
				forwardLists(ls, pivot.Index, candidateID)
			}
		} else {
			forwardListsBMW(ls, pivot.Index, candidateID)
		}
		if ls.sortByID() > 0 {
			break
		}
		pivot = determineCandidateConjunctive(ls, conjunctiveMax)
	}
	return h
}

// UnionCount reports, for q, the size of the disjunctive union, the negated
// union, and their intersection — a diagnostic for how aggressively
// negation prunes a given query, without running a full top-k search.
func (e *Engine) UnionCount(q Query) (UnionStats, error) {
	var stats UnionStats
	disjunctive := make(map[uint32]struct{})
	negated := make(map[uint32]struct{})

	for _, t := range q.Terms {
		term := e.Dict.Term(t.TokenID)
		list, ok := e.Lists[term]
		if !ok {
			return UnionStats{}, fmt.Errorf("%w: %q", ErrUnknownTerm, term)
		}
		target := disjunctive
		if t.Negated {
			target = negated
		}
		for _, p := range list.Postings {
			target[p.DocID] = struct{}{}
		}
	}

	for id := range negated {
		if _, ok := disjunctive[id]; ok {
			stats.Intersection++
		}
	}
	stats.Disjunctive = len(disjunctive)
	stats.Negated = len(negated)
	return stats, nil
}
