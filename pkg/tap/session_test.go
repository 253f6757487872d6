package tap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSample(t *testing.T, input string) *Session {
	t.Helper()
	s, err := ParseBytes([]byte(input))
	require.NoError(t, err)
	return s
}

func TestSession_Facets(t *testing.T) {
	t.Parallel()

	s := parseSample(t, sampleTAP)

	assert.Len(t, s.Tests(), 2)
	assert.Len(t, s.Assertions(), 3)
	assert.Len(t, s.Passing(), 2)
	assert.Len(t, s.Failing(), 1)
	assert.Len(t, s.Plans(), 1)
	assert.Len(t, s.Versions(), 1)
	assert.Len(t, s.Results(), 3)

	comments := s.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, "some console output", comments[0].Title)

	// Facets are repeatable.
	assert.Equal(t, s.Assertions(), s.Assertions())
}

func TestSession_ResultLookup(t *testing.T) {
	t.Parallel()

	s := parseSample(t, sampleTAP)

	tests, ok := s.Result(ResultTests)
	require.True(t, ok)
	assert.Equal(t, 3, tests.Count)
	assert.Equal(t, "# tests 3", tests.Raw)

	fail, ok := s.Result(ResultFail)
	require.True(t, ok)
	assert.Equal(t, 1, fail.Count)

	_, ok = s.Result("todo")
	assert.False(t, ok)
}

func TestSession_Groups(t *testing.T) {
	t.Parallel()

	s := parseSample(t, "ok 1 - orphan\n# first\nok 2 - a\nnot ok 3 - b\n# empty\n# last\nok 4 - c\n")
	groups := s.Groups()
	require.Len(t, groups, 4)

	assert.Equal(t, 0, groups[0].Test.TestNumber)
	assert.Empty(t, groups[0].Test.Title)
	require.Len(t, groups[0].Assertions, 1)
	assert.Equal(t, "orphan", groups[0].Assertions[0].Title)

	assert.Equal(t, "first", groups[1].Test.Title)
	assert.Len(t, groups[1].Assertions, 2)
	assert.Equal(t, 1, groups[1].Failed())

	assert.Equal(t, "empty", groups[2].Test.Title)
	assert.Empty(t, groups[2].Assertions)
	assert.Zero(t, groups[2].Failed())

	assert.Equal(t, "last", groups[3].Test.Title)
	assert.Len(t, groups[3].Assertions, 1)
}

func TestSession_Empty(t *testing.T) {
	t.Parallel()

	s := parseSample(t, "")
	assert.Empty(t, s.Assertions())
	assert.Empty(t, s.Groups())
	assert.Len(t, s.Results(), 3)
}
