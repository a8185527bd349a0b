package daat

import "sort"

// notFound is returned by skipToID when a cursor runs off the end of its
// list; callers compare against a docid of this value to detect exhaustion.
const notFound = ^uint32(0)

// ListWrapper is a cursor over one term's sealed PostingsList: the position
// within Postings, plus whether the term is negated for the query being
// evaluated. It plays the role of plist_wrapper in the traversal.
type ListWrapper struct {
	List    *PostingsList
	Pos     int  // index into List.Postings; len(List.Postings) means exhausted
	Negated bool
}

// newListWrapper starts a cursor at the first posting of list.
func newListWrapper(list *PostingsList, negated bool) *ListWrapper {
	return &ListWrapper{List: list, Pos: 0, Negated: negated}
}

// exhausted reports whether the cursor has moved past the end of its list.
func (w *ListWrapper) exhausted() bool {
	return w.Pos >= len(w.List.Postings)
}

// docID returns the current posting's document id, or notFound if exhausted.
func (w *ListWrapper) docID() uint32 {
	if w.exhausted() {
		return notFound
	}
	return w.List.Postings[w.Pos].DocID
}

// freq returns the current posting's frequency; 0 if exhausted.
func (w *ListWrapper) freq() uint32 {
	if w.exhausted() {
		return 0
	}
	return w.List.Postings[w.Pos].Freq
}

// blockIndex returns the block containing the cursor's current posting.
func (w *ListWrapper) blockIndex() int {
	if w.exhausted() {
		return w.List.NumBlocks() - 1
	}
	return w.List.blockContaining(w.docID())
}

// blockMax returns the block-max of the block containing the cursor's
// current posting.
func (w *ListWrapper) blockMax() float64 {
	bi := w.blockIndex()
	if bi < 0 || bi >= len(w.List.BlockMax) {
		return 0
	}
	return w.List.BlockMax[bi]
}

// blockLastID returns the highest docid in the block the cursor currently
// sits in. BMW shallow forwarding does not call it: forwardListsBMW reads
// BlockLastID for the block that would hold the pivot docid instead.
func (w *ListWrapper) blockLastID() uint32 {
	bi := w.blockIndex()
	if bi < 0 || bi >= len(w.List.BlockLastID) {
		return notFound
	}
	return w.List.BlockLastID[bi]
}

// skipToID advances the cursor to the first posting with docid >= target,
// using a binary search over the remaining postings (skip_to_id in the
// original traversal).
func (w *ListWrapper) skipToID(target uint32) {
	postings := w.List.Postings
	w.Pos += sort.Search(len(postings)-w.Pos, func(i int) bool {
		return postings[w.Pos+i].DocID >= target
	})
}

// ListSet is the ordered collection of cursors being driven through one
// query's pivoting, forwarding and evaluation.
type ListSet struct {
	Lists []*ListWrapper
}

// sortByID reorders the live (non-exhausted) prefix of Lists by ascending
// docid, moving exhausted cursors to the back, and reports how many cursors
// were found exhausted during this pass. The explicit count lets the
// conjunctive loops detect termination without re-comparing slice lengths
// before and after.
func (ls *ListSet) sortByID() (exhaustedCount int) {
	sort.SliceStable(ls.Lists, func(i, j int) bool {
		ei, ej := ls.Lists[i].exhausted(), ls.Lists[j].exhausted()
		if ei != ej {
			return ej // non-exhausted sorts before exhausted
		}
		return ls.Lists[i].docID() < ls.Lists[j].docID()
	})
	for _, w := range ls.Lists {
		if w.exhausted() {
			exhaustedCount++
		}
	}
	return exhaustedCount
}

// liveCount returns the number of non-exhausted cursors, assuming Lists is
// sorted by sortByID (exhausted cursors trail).
func (ls *ListSet) liveCount() int {
	n := len(ls.Lists)
	for n > 0 && ls.Lists[n-1].exhausted() {
		n--
	}
	return n
}

// sortByMaxDescending orders Lists by descending list upper bound. Pivot
// selection does not use this ordering: both pivot modes work on the docid
// order set by sortByID.
func (ls *ListSet) sortByMaxDescending() {
	sort.SliceStable(ls.Lists, func(i, j int) bool {
		return ls.Lists[i].List.Max > ls.Lists[j].List.Max
	})
}
