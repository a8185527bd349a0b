package daat

import "math"

// Scorer computes term-document relevance scores and the upper bounds the
// pruning engine needs to stay safe. A scorer must be monotonic: UpperBound
// must never underestimate the score Score would assign to any document with
// the given frequency, for any document length.
type Scorer interface {
	// IDF returns the inverse-document-frequency weight for a term that
	// occurs in docFreq of totalDocs documents.
	IDF(docFreq, totalDocs uint64) float64

	// Score returns the contribution of a single posting.
	Score(freq uint32, docLength int, idf float64) float64

	// UpperBound returns the maximum contribution a posting with this
	// frequency could make, used to build list and block upper bounds.
	// For scorers where the score only grows with frequency and is
	// otherwise independent of length (or bounded by the shortest
	// document), this can equal Score evaluated at the relevant length.
	UpperBound(freq uint32, docLength int, idf float64) float64
}

// BM25Scorer scores postings with the BM25 ranking function, using the same
// BM25Parameters (K1, B) the ingestion path is configured with.
type BM25Scorer struct {
	K1        float64
	B         float64
	AvgDocLen float64
}

// NewBM25Scorer builds a BM25Scorer from corpus-wide statistics.
func NewBM25Scorer(params BM25Parameters, totalTerms int64, totalDocs int) *BM25Scorer {
	avg := 0.0
	if totalDocs > 0 {
		avg = float64(totalTerms) / float64(totalDocs)
	}
	return &BM25Scorer{K1: params.K1, B: params.B, AvgDocLen: avg}
}

// IDF follows the classic BM25 IDF with a +1 floor so that terms occurring
// in every document still contribute a small positive weight rather than
// zero or negative.
func (s *BM25Scorer) IDF(docFreq, totalDocs uint64) float64 {
	if docFreq == 0 || totalDocs == 0 {
		return 0
	}
	return math.Log(1 + (float64(totalDocs)-float64(docFreq)+0.5)/(float64(docFreq)+0.5))
}

func (s *BM25Scorer) Score(freq uint32, docLength int, idf float64) float64 {
	if freq == 0 {
		return 0
	}
	tf := float64(freq)
	norm := 1 - s.B + s.B*(float64(docLength)/s.avgDocLenOrOne())
	return idf * (tf * (s.K1 + 1)) / (tf + s.K1*norm)
}

// UpperBound for BM25 is the score this posting actually achieves: BM25 is
// monotonically increasing in freq and the length-normalization term is
// already folded in, so the true per-document score is itself a safe bound
// once docLength is pinned to the block/list containing it. The engine
// never asks for a bound at a docLength other than a posting's own, so this
// is exact, not an overestimate.
func (s *BM25Scorer) UpperBound(freq uint32, docLength int, idf float64) float64 {
	return s.Score(freq, docLength, idf)
}

func (s *BM25Scorer) avgDocLenOrOne() float64 {
	if s.AvgDocLen <= 0 {
		return 1
	}
	return s.AvgDocLen
}

// ImpactScorer treats the stored frequency as a pre-quantized impact score,
// ignoring document length entirely. This is the quantized-impact scoring
// mode the engine supports alongside BM25, matching systems that pre-compute
// and store integer impacts at index-build time rather than scoring freq and
// length at query time.
type ImpactScorer struct{}

func (ImpactScorer) IDF(docFreq, totalDocs uint64) float64 { return 1 }

func (ImpactScorer) Score(freq uint32, docLength int, idf float64) float64 {
	return float64(freq)
}

func (ImpactScorer) UpperBound(freq uint32, docLength int, idf float64) float64 {
	return float64(freq)
}
