package daat

import "errors"

// Sentinel errors for the engine's external interfaces.
var (
	ErrMalformedDictionary = errors.New("malformed dictionary line")
	ErrMalformedQuery      = errors.New("malformed query line")
	ErrConflictingNegation = errors.New("term appears both negated and non-negated in the same query")
	ErrUnknownTerm         = errors.New("term has no sealed postings list")
	ErrEmptyQuery          = errors.New("query resolved to zero usable terms")
)
