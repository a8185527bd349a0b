package daat

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// WriteIndexFile serializes lists to w in the self-describing binary format
// the engine reads back with ReadIndexFile: a little-endian count of lists,
// followed by each list in turn. Term names are written alongside each list
// so the file is independently loadable without a separate dictionary,
// though in practice a Dictionary is also kept for query-side lookups.
func WriteIndexFile(w io.Writer, lists map[string]*PostingsList) error {
	bw := bufio.NewWriter(w)

	terms := make([]string, 0, len(lists))
	for term := range lists {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	if err := binary.Write(bw, binary.LittleEndian, uint64(len(terms))); err != nil {
		return fmt.Errorf("writing list count: %w", err)
	}
	for _, term := range terms {
		if err := writeSealedList(bw, term, lists[term]); err != nil {
			return fmt.Errorf("writing list %q: %w", term, err)
		}
	}
	return bw.Flush()
}

func writeSealedList(w *bufio.Writer, term string, pl *PostingsList) error {
	if err := writeString(w, term); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, math.Float64bits(pl.Max)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, math.Float64bits(pl.IDF)); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(pl.Postings))); err != nil {
		return err
	}
	for _, p := range pl.Postings {
		if err := binary.Write(w, binary.LittleEndian, p.DocID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, p.Freq); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(pl.BlockMax))); err != nil {
		return err
	}
	for i := range pl.BlockMax {
		if err := binary.Write(w, binary.LittleEndian, math.Float64bits(pl.BlockMax[i])); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, pl.BlockLastID[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeString(w *bufio.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

// ReadIndexFile deserializes a file written by WriteIndexFile back into a
// term -> PostingsList map, rebuilding each list's roaring document bitmap
// from its postings.
func ReadIndexFile(r io.Reader) (map[string]*PostingsList, error) {
	br := bufio.NewReader(r)

	var numLists uint64
	if err := binary.Read(br, binary.LittleEndian, &numLists); err != nil {
		return nil, fmt.Errorf("reading list count: %w", err)
	}

	out := make(map[string]*PostingsList, numLists)
	for i := uint64(0); i < numLists; i++ {
		term, pl, err := readSealedList(br)
		if err != nil {
			return nil, fmt.Errorf("reading list %d: %w", i, err)
		}
		out[term] = pl
	}
	return out, nil
}

func readSealedList(r *bufio.Reader) (string, *PostingsList, error) {
	term, err := readString(r)
	if err != nil {
		return "", nil, err
	}

	var maxBits, idfBits uint64
	if err := binary.Read(r, binary.LittleEndian, &maxBits); err != nil {
		return "", nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &idfBits); err != nil {
		return "", nil, err
	}

	var numPostings uint64
	if err := binary.Read(r, binary.LittleEndian, &numPostings); err != nil {
		return "", nil, err
	}
	postings := make([]Posting, numPostings)
	bitmap := roaring.NewBitmap()
	for i := range postings {
		if err := binary.Read(r, binary.LittleEndian, &postings[i].DocID); err != nil {
			return "", nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &postings[i].Freq); err != nil {
			return "", nil, err
		}
		bitmap.Add(postings[i].DocID)
	}

	var numBlocks uint64
	if err := binary.Read(r, binary.LittleEndian, &numBlocks); err != nil {
		return "", nil, err
	}
	blockMax := make([]float64, numBlocks)
	blockLast := make([]uint32, numBlocks)
	for i := range blockMax {
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return "", nil, err
		}
		blockMax[i] = math.Float64frombits(bits)
		if err := binary.Read(r, binary.LittleEndian, &blockLast[i]); err != nil {
			return "", nil, err
		}
	}

	return term, &PostingsList{
		Term:        term,
		Postings:    postings,
		DocIDs:      bitmap,
		Max:         math.Float64frombits(maxBits),
		IDF:         math.Float64frombits(idfBits),
		BlockMax:    blockMax,
		BlockLastID: blockLast,
	}, nil
}

func readString(r *bufio.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
