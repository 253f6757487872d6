package tap

// Stats holds aggregate counts for a session.
type Stats struct {
	Assertions int
	Passed     int
	Failed     int
	Todo       int
	Skipped    int
	Tests      int
	Comments   int

	HasPlan      bool
	Planned      int
	PlanSkip     string
	PlanMismatch bool // plan present and Planned != Assertions

	Truncated bool
}

// ComputeStats aggregates statistics from a session. Pass/fail totals come
// from the session's Result events when present.
func ComputeStats(s *Session) Stats {
	st := Stats{Truncated: s.Truncated()}
	for _, ev := range s.Events() {
		switch v := ev.(type) {
		case Test:
			st.Tests++
		case Comment:
			st.Comments++
		case Assertion:
			st.Assertions++
			if v.OK {
				st.Passed++
			} else {
				st.Failed++
			}
			if v.Directive != nil {
				switch v.Directive.Kind {
				case DirectiveTodo:
					st.Todo++
				case DirectiveSkip:
					st.Skipped++
				}
			}
		case Plan:
			if !st.HasPlan {
				st.HasPlan = true
				st.Planned = v.PlannedCount()
				st.PlanSkip = v.Skip
			}
		case Result:
			switch v.Name {
			case ResultTests:
				st.Assertions = v.Count
			case ResultPass:
				st.Passed = v.Count
			case ResultFail:
				st.Failed = v.Count
			}
		case Version:
		}
	}
	st.PlanMismatch = st.HasPlan && st.Planned != st.Assertions
	return st
}

// Failing reports whether the session should be treated as a failed run.
func (s Stats) Failing() bool {
	return s.Failed > 0 || s.PlanMismatch || s.Truncated
}
