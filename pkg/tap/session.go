package tap

// Session is the materialized event log of one parse. Its facets are filters
// over the log and may be read any number of times.
type Session struct {
	events    []Event
	truncated bool
}

// NewSession wraps an already-parsed event sequence.
func NewSession(events []Event, truncated bool) *Session {
	return &Session{events: events, truncated: truncated}
}

// Events returns every event in emission order.
func (s *Session) Events() []Event {
	return s.events
}

// Truncated reports whether input ended inside a diagnostic block.
func (s *Session) Truncated() bool {
	return s.truncated
}

func (s *Session) Tests() []Test           { return collect[Test](s.events) }
func (s *Session) Assertions() []Assertion { return collect[Assertion](s.events) }
func (s *Session) Comments() []Comment     { return collect[Comment](s.events) }
func (s *Session) Plans() []Plan           { return collect[Plan](s.events) }
func (s *Session) Versions() []Version     { return collect[Version](s.events) }
func (s *Session) Results() []Result       { return collect[Result](s.events) }

// Passing returns the assertions with OK set.
func (s *Session) Passing() []Assertion {
	return filterAssertions(s.events, true)
}

// Failing returns the assertions with OK unset.
func (s *Session) Failing() []Assertion {
	return filterAssertions(s.events, false)
}

// Result returns the named end-of-stream count.
func (s *Session) Result(name string) (Result, bool) {
	for _, r := range s.Results() {
		if r.Name == name {
			return r, true
		}
	}
	return Result{}, false
}

// Group is a test header with the assertions emitted under it. Assertions
// seen before any header land in a group with a zero Test.
type Group struct {
	Test       Test
	Assertions []Assertion
}

// Failed returns the number of failing assertions in the group.
func (g Group) Failed() int {
	n := 0
	for _, a := range g.Assertions {
		if !a.OK {
			n++
		}
	}
	return n
}

// Groups returns assertions grouped by test number, in test order. Empty
// groups are kept so that headers without assertions stay visible.
func (s *Session) Groups() []Group {
	var groups []Group
	index := make(map[int]int)
	add := func(t Test) int {
		groups = append(groups, Group{Test: t})
		index[t.TestNumber] = len(groups) - 1
		return len(groups) - 1
	}
	for _, ev := range s.events {
		switch v := ev.(type) {
		case Test:
			add(v)
		case Assertion:
			i, ok := index[v.TestNumber]
			if !ok {
				i = add(Test{TestNumber: v.TestNumber})
			}
			groups[i].Assertions = append(groups[i].Assertions, v)
		}
	}
	return groups
}

func collect[T Event](events []Event) []T {
	var out []T
	for _, ev := range events {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func filterAssertions(events []Event, ok bool) []Assertion {
	var out []Assertion
	for _, a := range collect[Assertion](events) {
		if a.OK == ok {
			out = append(out, a)
		}
	}
	return out
}
