package daat

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// blockSize is the number of postings grouped under one block-max entry.
const blockSize = 64

// Posting is a single (document, frequency) pair in a sealed list.
type Posting struct {
	DocID uint32
	Freq  uint32
}

// PostingsList is the immutable, block-indexed representation of one term's
// occurrences used by the dynamic-pruning traversal. It is produced once, by
// Seal, from the mutable skip-list-backed InvertedIndex built during
// ingestion.
type PostingsList struct {
	Term     string
	Postings []Posting

	// DocIDs is a roaring bitmap of the list's document ids, built by Seal
	// and rebuilt by ReadIndexFile. The negation filter and UnionCount do not
	// read it: they walk cursors and Postings respectively.
	DocIDs *roaring.Bitmap

	// Max is the list upper bound: the highest score any single posting in
	// this list could contribute, under the scorer it was sealed with.
	Max float64

	// IDF is the inverse-document-frequency weight this list was sealed
	// with, cached so evaluation never needs to recompute it per posting.
	IDF float64

	// BlockMax and BlockLastID are parallel slices, one entry per block of
	// blockSize consecutive postings: BlockMax[i] is the maximum score
	// achievable within block i, BlockLastID[i] is the largest docid in it
	// (the block's "rep", used to locate the block a candidate falls in).
	BlockMax    []float64
	BlockLastID []uint32
}

// Len returns the number of postings in the list.
func (pl *PostingsList) Len() int { return len(pl.Postings) }

// NumBlocks returns the number of block-max entries.
func (pl *PostingsList) NumBlocks() int { return len(pl.BlockMax) }

// blockContaining returns the index of the first block whose BlockLastID is
// >= docid, i.e. the block that would hold docid were it present.
func (pl *PostingsList) blockContaining(docid uint32) int {
	lo, hi := 0, len(pl.BlockLastID)
	for lo < hi {
		mid := (lo + hi) / 2
		if pl.BlockLastID[mid] < docid {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Seal flattens every term's skip list in idx into a blocked PostingsList,
// scored under scorer. This is the bridge between the document-ingestion
// path (InvertedIndex.Index) and the dynamic-pruning engine, which requires
// a read-only, docid-sorted, block-max-indexed representation.
func Seal(idx *InvertedIndex, scorer Scorer) map[string]*PostingsList {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	out := make(map[string]*PostingsList, len(idx.PostingsList))
	for term, sl := range idx.PostingsList {
		out[term] = sealTerm(idx, term, sl, scorer)
	}
	return out
}

func sealTerm(idx *InvertedIndex, term string, sl SkipList, scorer Scorer) *PostingsList {
	freqs := make(map[uint32]uint32)
	it := sl.Iterator()
	for it.HasNext() {
		pos := it.Next()
		if pos.IsBeginning() || pos.IsEnd() {
			continue
		}
		freqs[uint32(pos.DocumentID)]++
	}

	docIDs := make([]uint32, 0, len(freqs))
	for d := range freqs {
		docIDs = append(docIDs, d)
	}
	sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })

	bitmap := roaring.NewBitmap()
	postings := make([]Posting, len(docIDs))
	idf := scorer.IDF(uint64(len(docIDs)), uint64(idx.TotalDocs))

	var listMax float64
	for i, d := range docIDs {
		f := freqs[d]
		postings[i] = Posting{DocID: d, Freq: f}
		bitmap.Add(d)
		if s := scorer.UpperBound(f, idx.docLength(d), idf); s > listMax {
			listMax = s
		}
	}

	var blockMax []float64
	var blockLast []uint32
	for start := 0; start < len(postings); start += blockSize {
		end := start + blockSize
		if end > len(postings) {
			end = len(postings)
		}
		var bmax float64
		for _, p := range postings[start:end] {
			if s := scorer.UpperBound(p.Freq, idx.docLength(p.DocID), idf); s > bmax {
				bmax = s
			}
		}
		blockMax = append(blockMax, bmax)
		blockLast = append(blockLast, postings[end-1].DocID)
	}

	return &PostingsList{
		Term:        term,
		Postings:    postings,
		DocIDs:      bitmap,
		Max:         listMax,
		IDF:         idf,
		BlockMax:    blockMax,
		BlockLastID: blockLast,
	}
}

func (idx *InvertedIndex) docLength(docID uint32) int {
	if stats, ok := idx.DocStats[int(docID)]; ok {
		return stats.Length
	}
	return 0
}

// BuildDocLengths snapshots per-document lengths out of idx for use by a
// sealed Engine, which no longer holds a reference to the mutable index.
func BuildDocLengths(idx *InvertedIndex) map[uint32]int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	lengths := make(map[uint32]int, len(idx.DocStats))
	for id, stats := range idx.DocStats {
		lengths[uint32(id)] = stats.Length
	}
	return lengths
}
