package tap

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTAP is a tape-style run with two groups, a YAML diagnostic, a SKIP
// directive, console noise and the emitter's own summary lines.
const sampleTAP = `TAP version 13
# first group
ok 1 - should be equal
not ok 2 - should be truthy
  ---
    operator: ok
    expected: true
    actual:   false
  ...
# second group
ok 3 - third # SKIP not ready
some console output

1..3
# tests 3
# pass  2
# fail  1
`

// feedAll runs lines through a fresh parser and returns all events.
func feedAll(t *testing.T, lines ...string) ([]Event, *Parser, error) {
	t.Helper()
	p := NewParser()
	var out []Event
	for _, l := range lines {
		evs, err := p.Feed(l)
		if err != nil {
			return out, p, err
		}
		out = append(out, evs...)
	}
	evs, err := p.Close()
	out = append(out, evs...)
	return out, p, err
}

func assertionsOf(events []Event) []Assertion {
	return collect[Assertion](events)
}

func TestParser_SingleAssertion(t *testing.T) {
	t.Parallel()

	events, _, err := feedAll(t, "ok 1 - first")
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, Assertion{
		Raw:             "ok 1 - first",
		Title:           "first",
		OK:              true,
		Number:          1,
		Diagnostic:      Diagnostic{},
		RawDiagnostic:   "",
		LineNumber:      0,
		TestNumber:      0,
		AssertionNumber: 1,
	}, events[0])
	assert.Equal(t, Result{Raw: "# tests 1", Name: ResultTests, Count: 1}, events[1])
	assert.Equal(t, Result{Raw: "# pass 1", Name: ResultPass, Count: 1}, events[2])
	assert.Equal(t, Result{Raw: "# fail 0", Name: ResultFail, Count: 0}, events[3])
}

func TestParser_FailingAssertionWithDiagnostic(t *testing.T) {
	t.Parallel()

	input := "ok 1 - first\nnot ok 2 - second\n  ---\nmessage: boom\n  ...\n"
	events, _, err := feedAll(t, strings.Split(strings.TrimSuffix(input, "\n"), "\n")...)
	require.NoError(t, err)

	as := assertionsOf(events)
	require.Len(t, as, 2)
	second := as[1]
	assert.False(t, second.OK)
	assert.Equal(t, "second", second.Title)
	assert.Equal(t, 2, second.AssertionNumber)
	assert.Equal(t, 1, second.LineNumber)
	assert.Equal(t, Diagnostic{"message": "boom"}, second.Diagnostic)
	assert.Equal(t, "  ---\nmessage: boom\n  ...", second.RawDiagnostic)
	assert.Equal(t, "not ok 2 - second\n  ---\nmessage: boom\n  ...", second.Raw)
}

func TestParser_SampleStream(t *testing.T) {
	t.Parallel()

	events, p, err := feedAll(t, strings.Split(strings.TrimSuffix(sampleTAP, "\n"), "\n")...)
	require.NoError(t, err)
	assert.False(t, p.Truncated())

	want := []Event{
		Version{Raw: "TAP version 13", Version: 13, LineNumber: 0},
		Test{Raw: "# first group", Title: "first group", LineNumber: 1, TestNumber: 1},
		Assertion{Raw: "ok 1 - should be equal", Title: "should be equal", OK: true, Number: 1,
			Diagnostic: Diagnostic{}, LineNumber: 2, TestNumber: 1, AssertionNumber: 1},
		Assertion{
			Raw:           "not ok 2 - should be truthy\n  ---\n    operator: ok\n    expected: true\n    actual:   false\n  ...",
			Title:         "should be truthy",
			Number:        2,
			Diagnostic:    Diagnostic{"operator": "ok", "expected": true, "actual": false},
			RawDiagnostic: "  ---\n    operator: ok\n    expected: true\n    actual:   false\n  ...",
			LineNumber:    3, TestNumber: 1, AssertionNumber: 2,
		},
		Test{Raw: "# second group", Title: "second group", LineNumber: 9, TestNumber: 2},
		Assertion{Raw: "ok 3 - third # SKIP not ready", Title: "third # SKIP not ready", OK: true, Number: 3,
			Directive:  &Directive{Kind: DirectiveSkip, Reason: "not ready"},
			Diagnostic: Diagnostic{}, LineNumber: 10, TestNumber: 2, AssertionNumber: 3},
		Comment{Raw: "some console output", Title: "some console output", LineNumber: 11},
		Plan{Raw: "1..3", From: 1, To: 3, LineNumber: 13},
		Result{Raw: "# tests 3", Name: ResultTests, Count: 3},
		Result{Raw: "# pass 2", Name: ResultPass, Count: 2},
		Result{Raw: "# fail 1", Name: ResultFail, Count: 1},
	}
	assert.Equal(t, want, events)
}

func TestParser_ReservedSummaryLinesProduceNoEvents(t *testing.T) {
	t.Parallel()

	events, _, err := feedAll(t, "# tests 3", "# pass 2", "# fail 1", "# ok")
	require.NoError(t, err)

	for _, ev := range events {
		_, isResult := ev.(Result)
		assert.True(t, isResult, "unexpected %s event %+v", ev.Type(), ev)
	}
	assert.Len(t, events, 3)
}

func TestParser_NumberingIsSequential(t *testing.T) {
	t.Parallel()

	var lines []string
	for g := 1; g <= 3; g++ {
		lines = append(lines, fmt.Sprintf("# group %d", g))
		for i := 0; i < 4; i++ {
			prefix := "ok"
			if i == 2 {
				prefix = "not ok"
			}
			// Explicit numbers deliberately repeat; internal numbering wins.
			lines = append(lines, fmt.Sprintf("%s %d - case", prefix, i+1))
		}
	}
	events, _, err := feedAll(t, lines...)
	require.NoError(t, err)

	tests := collect[Test](events)
	require.Len(t, tests, 3)
	for i, tt := range tests {
		assert.Equal(t, i+1, tt.TestNumber)
	}

	as := assertionsOf(events)
	require.Len(t, as, 12)
	for i, a := range as {
		assert.Equal(t, i+1, a.AssertionNumber)
		assert.Equal(t, i/4+1, a.TestNumber)
		assert.Equal(t, i%4 != 2, a.OK, "assertion %d", i+1)
	}
}

func TestParser_AssertionBeforeAnyTestHasTestNumberZero(t *testing.T) {
	t.Parallel()

	events, _, err := feedAll(t, "ok 1 - early", "# later group", "ok 2 - grouped")
	require.NoError(t, err)

	as := assertionsOf(events)
	require.Len(t, as, 2)
	assert.Equal(t, 0, as[0].TestNumber)
	assert.Equal(t, 1, as[1].TestNumber)
}

func TestParser_PendingAssertionEmittedAfterBlockCloses(t *testing.T) {
	t.Parallel()

	p := NewParser()
	for _, l := range []string{"not ok 1 - waits", "  ---", "    message: later"} {
		evs, err := p.Feed(l)
		require.NoError(t, err)
		assert.Empty(t, evs, "nothing is final before the block closes")
	}
	evs, err := p.Feed("  ...")
	require.NoError(t, err)
	assert.Empty(t, evs)

	evs, err = p.Feed("ok 2 - next")
	require.NoError(t, err)
	require.Len(t, evs, 1)
	a := evs[0].(Assertion)
	assert.Equal(t, 1, a.AssertionNumber)
	assert.Equal(t, Diagnostic{"message": "later"}, a.Diagnostic)
}

func TestParser_DelayedAssertionFollowsLaterEvents(t *testing.T) {
	t.Parallel()

	// A header inside the block is emitted before the assertion waiting on it.
	events, _, err := feedAll(t, "not ok 1 - slow", "  ---", "# inner", "  ...")
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, TypeTest, events[0].Type())
	a := events[1].(Assertion)
	assert.Equal(t, 0, a.LineNumber)
	assert.Equal(t, 1, a.TestNumber, "test number is read at emission time")
}

func TestParser_AssertionWithoutBlockHasEmptyDiagnostic(t *testing.T) {
	t.Parallel()

	events, _, err := feedAll(t, "not ok 1 - bare", "# next", "ok 2")
	require.NoError(t, err)

	for _, a := range assertionsOf(events) {
		assert.Equal(t, Diagnostic{}, a.Diagnostic)
		assert.Empty(t, a.RawDiagnostic)
	}
}

func TestParser_BlockInteriorNotLeakedAsComments(t *testing.T) {
	t.Parallel()

	events, _, err := feedAll(t, "not ok 1 - x", "  ---", "  stack: |", "    at foo", "  ...", "after")
	require.NoError(t, err)

	comments := collect[Comment](events)
	require.Len(t, comments, 1)
	assert.Equal(t, "after", comments[0].Title)
	assert.Equal(t, 5, comments[0].LineNumber)
}

func TestParser_SupersededPendingAssertion(t *testing.T) {
	t.Parallel()

	events, _, err := feedAll(t, "ok 1 - a", "  ---", "ok 2 - b", "  ---", "  x: 1", "  ...")
	require.NoError(t, err)

	as := assertionsOf(events)
	require.Len(t, as, 2)
	assert.Equal(t, 1, as[0].AssertionNumber)
	assert.Equal(t, Diagnostic{}, as[0].Diagnostic)
	assert.Equal(t, 2, as[1].AssertionNumber)
	assert.Equal(t, Diagnostic{"x": 1}, as[1].Diagnostic)
}

func TestParser_TruncatedBlockDropsPendingAssertion(t *testing.T) {
	t.Parallel()

	events, p, err := feedAll(t, "ok 1 - kept", "not ok 2 - lost", "  ---", "    message: never closed")
	require.NoError(t, err)
	assert.True(t, p.Truncated())

	as := assertionsOf(events)
	require.Len(t, as, 1)
	assert.Equal(t, "kept", as[0].Title)

	results := collect[Result](events)
	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Count)
	assert.Equal(t, 0, results[2].Count)
}

func TestParser_MalformedDiagnosticIsFatal(t *testing.T) {
	t.Parallel()

	p := NewParser()
	var err error
	for _, l := range []string{"not ok 1 - x", "  ---", "    foo: [unclosed", "  ...", "ok 2"} {
		if _, err = p.Feed(l); err != nil {
			break
		}
	}
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedDiagnostic))

	_, again := p.Feed("ok 3")
	assert.Equal(t, err, again, "parser stays failed")
	_, closeErr := p.Close()
	assert.Equal(t, err, closeErr)
}

func TestParser_FeedAfterClose(t *testing.T) {
	t.Parallel()

	p := NewParser()
	_, err := p.Close()
	require.NoError(t, err)

	_, err = p.Feed("ok 1")
	assert.ErrorIs(t, err, ErrClosed)

	evs, err := p.Close()
	require.NoError(t, err)
	assert.Empty(t, evs, "second Close emits nothing")
}

func TestParser_EmptyInputStillEmitsResults(t *testing.T) {
	t.Parallel()

	events, _, err := feedAll(t)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for _, ev := range events {
		assert.Equal(t, 0, ev.(Result).Count)
	}
}

func TestParser_PlanWithSkip(t *testing.T) {
	t.Parallel()

	events, _, err := feedAll(t, "1..0 # SKIP no database")
	require.NoError(t, err)

	plans := collect[Plan](events)
	require.Len(t, plans, 1)
	assert.Equal(t, Plan{Raw: "1..0 # SKIP no database", From: 1, To: 0, Skip: "no database"}, plans[0])
	assert.Equal(t, 0, plans[0].PlannedCount())
}

func TestParser_TodoDirective(t *testing.T) {
	t.Parallel()

	events, _, err := feedAll(t, "not ok 1 - later # TODO implement parser")
	require.NoError(t, err)

	as := assertionsOf(events)
	require.Len(t, as, 1)
	require.NotNil(t, as[0].Directive)
	assert.Equal(t, DirectiveTodo, as[0].Directive.Kind)
	assert.Equal(t, "implement parser", as[0].Directive.Reason)
	assert.False(t, as[0].OK, "directives do not change ok")
}

func TestParser_TestTitleStripsFirstMarker(t *testing.T) {
	t.Parallel()

	events, _, err := feedAll(t, "# adds # numbers", "#compact")
	require.NoError(t, err)

	tests := collect[Test](events)
	require.Len(t, tests, 2)
	assert.Equal(t, "adds # numbers", tests[0].Title)
	assert.Equal(t, "#compact", tests[1].Title)
}
