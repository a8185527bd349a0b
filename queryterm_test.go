package daat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDictionaryParsesTermIDPairs(t *testing.T) {
	dict, err := LoadDictionary(strings.NewReader("alpha 1\nbeta 2\n"))
	require.NoError(t, err)

	id, ok := dict.Lookup("alpha")
	require.True(t, ok)
	require.EqualValues(t, 1, id)
	require.Equal(t, "beta", dict.Term(2))
}

func TestLoadDictionaryRejectsMalformedLine(t *testing.T) {
	_, err := LoadDictionary(strings.NewReader("noseparator\n"))
	require.ErrorIs(t, err, ErrMalformedDictionary)
}

func TestParseQueryLineMergesDuplicatesAndNegation(t *testing.T) {
	dict, err := LoadDictionary(strings.NewReader("a 1\nb 2\n"))
	require.NoError(t, err)

	q, ok, err := ParseQueryLine(dict, "7;a a -b", false)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 7, q.ID)
	require.Len(t, q.Terms, 2)

	require.EqualValues(t, 1, q.Terms[0].TokenID)
	require.EqualValues(t, 2, q.Terms[0].Frequency)
	require.False(t, q.Terms[0].Negated)

	require.EqualValues(t, 2, q.Terms[1].TokenID)
	require.True(t, q.Terms[1].Negated)
}

func TestParseQueryLineConflictingNegationIsFatal(t *testing.T) {
	dict, err := LoadDictionary(strings.NewReader("a 1\n"))
	require.NoError(t, err)

	_, _, err = ParseQueryLine(dict, "1;a -a", false)
	require.ErrorIs(t, err, ErrConflictingNegation)
}

func TestParseQueryLineDropsQueryWhenOnlyCompleteAndTermMissing(t *testing.T) {
	dict, err := LoadDictionary(strings.NewReader("a 1\n"))
	require.NoError(t, err)

	_, ok, err := ParseQueryLine(dict, "1;a ghost", true)
	require.NoError(t, err)
	require.False(t, ok, "expected the query to be dropped when onlyComplete and a term is missing")
}

func TestParseQueryLineDropsOnlyMissingTermWhenNotOnlyComplete(t *testing.T) {
	dict, err := LoadDictionary(strings.NewReader("a 1\n"))
	require.NoError(t, err)

	q, ok, err := ParseQueryLine(dict, "1;a ghost", false)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, q.Terms, 1)
	require.EqualValues(t, 1, q.Terms[0].TokenID)
}

func TestParseQueriesAbortsBatchOnConflictingNegation(t *testing.T) {
	dict, err := LoadDictionary(strings.NewReader("a 1\n"))
	require.NoError(t, err)

	_, err = ParseQueries(dict, strings.NewReader("1;a\n2;a -a\n"), false)
	require.ErrorIs(t, err, ErrConflictingNegation)
}
