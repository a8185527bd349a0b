package daat

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// QueryTerm is one resolved term of a parsed query: its dictionary id, the
// surface string it came from, how many times it repeated in the query line,
// and whether it was negated.
type QueryTerm struct {
	TokenID   uint64
	Token     string
	Frequency uint64
	Negated   bool
}

// Query is a single parsed query line, ready to be handed to Engine.Search.
type Query struct {
	ID    uint64
	Terms []QueryTerm
}

// Dictionary maps between a query's surface terms and the term ids a sealed
// PostingsList collection is keyed by, matching query.hpp's load_dictionary
// two-way mapping.
type Dictionary struct {
	ids   map[string]uint64
	terms map[uint64]string
}

// LoadDictionary reads a dictionary file of "<term> <id>" lines, one per
// line, building the forward and reverse mappings a query parse needs.
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	dict := &Dictionary{ids: make(map[string]uint64), terms: make(map[uint64]string)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		sep := strings.LastIndexByte(line, ' ')
		if sep < 0 {
			return nil, fmt.Errorf("%w: malformed dictionary line %q", ErrMalformedDictionary, line)
		}
		term, idStr := line[:sep], line[sep+1:]
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrMalformedDictionary, line, err)
		}
		dict.ids[term] = id
		dict.terms[id] = term
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	return dict, nil
}

// Lookup returns the term id for a surface term, or false if it is not in
// the dictionary.
func (d *Dictionary) Lookup(term string) (uint64, bool) {
	id, ok := d.ids[term]
	return id, ok
}

// Term returns the surface term for a dictionary id, or "" if unknown.
func (d *Dictionary) Term(id uint64) string {
	return d.terms[id]
}

type tempTerm struct {
	id      uint64
	negated bool
	count   uint64
}

// ParseQueryLine parses a single "<qry_id>;<tok1> <tok2> ..." line against
// dict: terms prefixed with '-' are negated, unresolved surface terms are
// dropped (a warning is logged) unless onlyComplete requires every term to
// resolve, in which case the whole query is dropped. Duplicate terms in the
// same line are merged, their Frequency accumulating, except that the same
// term appearing both negated and non-negated is a fatal parse error.
func ParseQueryLine(dict *Dictionary, line string, onlyComplete bool) (Query, bool, error) {
	sep := strings.IndexByte(line, ';')
	if sep < 0 {
		return Query{}, false, fmt.Errorf("%w: missing ';' in %q", ErrMalformedQuery, line)
	}
	qryID, err := strconv.ParseUint(line[:sep], 10, 64)
	if err != nil {
		return Query{}, false, fmt.Errorf("%w: bad query id in %q: %w", ErrMalformedQuery, line, err)
	}
	content := line[sep+1:]

	var resolved []tempTerm
	for _, tok := range strings.Split(content, " ") {
		if tok == "" {
			continue
		}
		negated := false
		if strings.HasPrefix(tok, "-") {
			tok = tok[1:]
			negated = true
			slog.Info("query has negated term", slog.Uint64("query_id", qryID), slog.String("term", tok))
		}
		id, ok := dict.Lookup(tok)
		if !ok {
			slog.Warn("term not found in dictionary", slog.Uint64("query_id", qryID), slog.String("term", tok))
			if onlyComplete {
				return Query{}, false, nil
			}
			continue
		}
		resolved = append(resolved, tempTerm{id: id, negated: negated, count: 1})
	}

	merged := make(map[uint64]*tempTerm)
	var order []uint64
	for _, t := range resolved {
		if existing, ok := merged[t.id]; ok {
			if existing.negated != t.negated {
				return Query{}, false, fmt.Errorf("%w: query %d has conflicting negation for term id %d",
					ErrConflictingNegation, qryID, t.id)
			}
			existing.count++
			continue
		}
		tt := t
		merged[t.id] = &tt
		order = append(order, t.id)
	}

	terms := make([]QueryTerm, 0, len(order))
	for _, id := range order {
		t := merged[id]
		terms = append(terms, QueryTerm{
			TokenID:   t.id,
			Token:     dict.Term(t.id),
			Frequency: t.count,
			Negated:   t.negated,
		})
	}

	return Query{ID: qryID, Terms: terms}, true, nil
}

// ParseQueries reads a query file, one query per line, resolving each
// against dict via ParseQueryLine; a conflicting-negation parse error aborts
// the whole batch.
func ParseQueries(dict *Dictionary, r io.Reader, onlyComplete bool) ([]Query, error) {
	var queries []Query
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		q, ok, err := ParseQueryLine(dict, line, onlyComplete)
		if err != nil {
			return nil, err
		}
		if ok {
			queries = append(queries, q)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	return queries, nil
}
