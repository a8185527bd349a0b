// Package daat implements dynamic-pruning top-k retrieval (WAND, Block-Max
// WAND) over an inverted index.
//
// InvertedIndex is the mutable structure cmd/daatingest builds while walking a
// corpus. Once ingestion finishes, Seal (in postings.go) flattens it into the
// read-only, block-indexed PostingsList the WAND/BMW engine actually queries
// against; InvertedIndex itself is never queried directly.
package daat

import (
	"log/slog"
	"sync"
)

// BM25Parameters are carried on the mutable index during ingestion and handed
// to NewBM25Scorer (scorer.go) once the index is sealed; this struct just
// holds the two tunables (K1, B).
type BM25Parameters struct {
	K1 float64 // Term frequency saturation (typical: 1.2-2.0)
	B  float64 // Length normalization (typical: 0.75)
}

// DefaultBM25Parameters returns the standard BM25 parameters
func DefaultBM25Parameters() BM25Parameters {
	return BM25Parameters{
		K1: 1.5,  // Moderate term frequency saturation
		B:  0.75, // Standard length normalization
	}
}

// DocumentStats stores statistics about a single document
type DocumentStats struct {
	DocID     int            // Document identifier
	Length    int            // Number of terms in the document
	TermFreqs map[string]int // How many times each term appears
}

// InvertedIndex is the mutable, in-memory structure built while walking a
// corpus. Seal (postings.go) is its only consumer once ingestion finishes: it
// walks PostingsList to build the per-term roaring bitmap and block-max
// ladder the engine queries, and reads DocStats/TotalDocs to compute IDF and
// length-normalized upper bounds.
type InvertedIndex struct {
	mu sync.Mutex // Protects against concurrent access

	// PostingsList holds position-ordered occurrences per term, built during
	// ingestion and flattened away by Seal.
	PostingsList map[string]SkipList

	DocStats   map[int]DocumentStats // DocID → statistics
	TotalDocs  int                   // Total number of indexed documents
	TotalTerms int64                 // Total number of terms across all docs
	BM25Params BM25Parameters        // BM25 tuning parameters
}

// NewInvertedIndex creates a new empty inverted index.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		PostingsList: make(map[string]SkipList),
		DocStats:     make(map[int]DocumentStats),
		TotalDocs:    0,
		TotalTerms:   0,
		BM25Params:   DefaultBM25Parameters(),
	}
}

// Index tokenizes document via Analyze, records each token's (docID,
// position) occurrence in its term's skip list, and updates the per-document
// BM25 statistics (length, term frequencies) plus the corpus-wide totals.
func (idx *InvertedIndex) Index(docID int, document string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	slog.Info("indexing document", slog.Int("docID", docID))

	tokens := Analyze(document)

	docStats := DocumentStats{
		DocID:     docID,
		Length:    len(tokens),
		TermFreqs: make(map[string]int),
	}

	for position, token := range tokens {
		idx.indexToken(token, docID, position)
		docStats.TermFreqs[token]++
	}

	idx.DocStats[docID] = docStats
	idx.TotalDocs++
	idx.TotalTerms += int64(len(tokens))
}

// indexToken records a single token occurrence at (docID, position) in the
// term's skip list, creating the list on first occurrence.
func (idx *InvertedIndex) indexToken(token string, docID, position int) {
	skipList, exists := idx.getPostingList(token)
	if !exists {
		skipList = *NewSkipList()
	}

	skipList.Insert(Position{
		DocumentID: float64(docID),
		Offset:     float64(position),
	})

	// Maps don't update in place when a struct value is modified, so the
	// grown SkipList has to be written back explicitly.
	idx.PostingsList[token] = skipList
}

// getPostingList returns the posting list for a token, or (zero value, false)
// if the token hasn't been seen yet.
func (idx *InvertedIndex) getPostingList(token string) (SkipList, bool) {
	skipList, exists := idx.PostingsList[token]
	return skipList, exists
}
