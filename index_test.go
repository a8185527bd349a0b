package daat

import (
	"testing"
)

func TestNewInvertedIndex(t *testing.T) {
	idx := NewInvertedIndex()

	if idx == nil {
		t.Fatal("NewInvertedIndex() returned nil")
	}
	if idx.PostingsList == nil {
		t.Error("PostingsList is nil")
	}
	if len(idx.PostingsList) != 0 {
		t.Errorf("New index has %d entries, want 0", len(idx.PostingsList))
	}
}

func TestInvertedIndex_Index_SingleDocument(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "quick brown fox")

	tokens := []string{"quick", "brown", "fox"}
	for _, token := range tokens {
		if _, exists := idx.PostingsList[token]; !exists {
			t.Errorf("Token %q was not indexed", token)
		}
	}
}

func TestInvertedIndex_Index_MultipleDocuments(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "quick brown fox")
	idx.Index(2, "sleepy dog")
	idx.Index(3, "quick brown cats")

	expectedTokens := map[string]bool{
		"quick":  true,
		"brown":  true,
		"fox":    true,
		"sleepi": true, // stemmed from "sleepy"
		"dog":    true,
		"cat":    true, // stemmed from "cats"
	}

	for token := range expectedTokens {
		if _, exists := idx.PostingsList[token]; !exists {
			t.Errorf("Token %q was not indexed", token)
		}
	}

	if idx.TotalDocs != 3 {
		t.Errorf("TotalDocs = %d, want 3", idx.TotalDocs)
	}
	if _, ok := idx.DocStats[2]; !ok {
		t.Errorf("expected DocStats entry for doc 2")
	}
}

func TestInvertedIndex_Index_DuplicateWords(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "quick quick brown")

	skipList, exists := idx.PostingsList["quick"]
	if !exists {
		t.Fatal("Token 'quick' was not indexed")
	}

	count := 0
	iter := skipList.Iterator()
	for iter.HasNext() {
		iter.Next()
		count++
	}
	if count != 2 {
		t.Errorf("Token 'quick' has %d occurrences, want 2", count)
	}

	stats := idx.DocStats[1]
	if stats.TermFreqs["quick"] != 2 {
		t.Errorf("DocStats term frequency for 'quick' = %d, want 2", stats.TermFreqs["quick"])
	}
}

func TestInvertedIndex_Index_EmptyDocument(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "")

	if len(idx.PostingsList) != 0 {
		t.Errorf("Empty document created %d tokens, want 0", len(idx.PostingsList))
	}
}

func TestInvertedIndex_Index_StopWords(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "the quick brown fox")

	if _, exists := idx.PostingsList["the"]; exists {
		t.Error("Stop word 'the' should not be indexed")
	}
	if _, exists := idx.PostingsList["quick"]; !exists {
		t.Error("Token 'quick' should be indexed")
	}
}

func TestInvertedIndex_ConcurrentIndexing(t *testing.T) {
	idx := NewInvertedIndex()

	done := make(chan bool, 3)

	go func() {
		idx.Index(1, "quick brown fox")
		done <- true
	}()
	go func() {
		idx.Index(2, "sleepy dog")
		done <- true
	}()
	go func() {
		idx.Index(3, "quick brown cats")
		done <- true
	}()

	<-done
	<-done
	<-done

	tokens := []string{"quick", "brown", "fox", "sleepi", "dog", "cat"}
	for _, token := range tokens {
		if _, exists := idx.PostingsList[token]; !exists {
			t.Errorf("Token %q was not indexed (concurrent indexing issue)", token)
		}
	}
}
