// Package tap parses TAP (Test Anything Protocol) streams into typed events.
//
// A Parser consumes one line at a time and is the single owner of all parse
// state: the lookahead window, the diagnostic block machine, the test and
// assertion counters and the assertion waiting for its diagnostic. Each
// parse session must be consumed by exactly one reader; a Session is the
// materialized, replayable log for callers that need several views.
package tap

import "encoding/json"

// EventType tags the concrete type of an Event.
type EventType string

const (
	TypeTest      EventType = "test"
	TypeAssertion EventType = "assertion"
	TypeComment   EventType = "comment"
	TypePlan      EventType = "plan"
	TypeVersion   EventType = "version"
	TypeResult    EventType = "result"
)

// Event is one of Test, Assertion, Comment, Plan, Version or Result.
// The set is closed; consumers type-switch on the concrete value.
type Event interface {
	Type() EventType
	event()
}

// Diagnostic is the decoded YAML block attached to an assertion.
type Diagnostic map[string]any

// Test is a "# title" group header.
type Test struct {
	Raw        string `json:"raw"`
	Title      string `json:"title"`
	LineNumber int    `json:"lineNumber"`
	TestNumber int    `json:"testNumber"`
}

// Assertion is an "ok" / "not ok" line with its optional diagnostic.
type Assertion struct {
	Raw             string     `json:"raw"`
	Title           string     `json:"title"`
	OK              bool       `json:"ok"`
	Number          int        `json:"number,omitempty"` // as written in the line; informational
	Directive       *Directive `json:"directive,omitempty"`
	Diagnostic      Diagnostic `json:"diagnostic"`
	DiagnosticValue any        `json:"diagnosticValue,omitempty"` // set when the block is not a mapping
	RawDiagnostic   string     `json:"rawDiagnostic"`
	LineNumber      int        `json:"lineNumber"`
	TestNumber      int        `json:"testNumber"`
	AssertionNumber int        `json:"assertionNumber"`
}

// DirectiveKind is TODO or SKIP.
type DirectiveKind string

const (
	DirectiveTodo DirectiveKind = "todo"
	DirectiveSkip DirectiveKind = "skip"
)

// Directive is a "# TODO" or "# SKIP" suffix on an assertion title.
type Directive struct {
	Kind   DirectiveKind `json:"kind"`
	Reason string        `json:"reason,omitempty"`
}

// Comment is free text that matched no other kind.
type Comment struct {
	Raw        string `json:"raw"`
	Title      string `json:"title"`
	LineNumber int    `json:"lineNumber"`
}

// Plan is a "from..to" line with an optional SKIP reason.
type Plan struct {
	Raw        string `json:"raw"`
	From       int    `json:"from"`
	To         int    `json:"to"`
	Skip       string `json:"skip,omitempty"`
	LineNumber int    `json:"lineNumber"`
}

// Version is a "TAP version N" header.
type Version struct {
	Raw        string `json:"raw"`
	Version    int    `json:"version"`
	LineNumber int    `json:"lineNumber"`
}

// Result names, emitted in this order when the stream ends.
const (
	ResultTests = "tests"
	ResultPass  = "pass"
	ResultFail  = "fail"
)

// Result is a synthetic end-of-stream count.
type Result struct {
	Raw   string `json:"raw"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (Test) Type() EventType      { return TypeTest }
func (Assertion) Type() EventType { return TypeAssertion }
func (Comment) Type() EventType   { return TypeComment }
func (Plan) Type() EventType      { return TypePlan }
func (Version) Type() EventType   { return TypeVersion }
func (Result) Type() EventType    { return TypeResult }

func (Test) event()      {}
func (Assertion) event() {}
func (Comment) event()   {}
func (Plan) event()      {}
func (Version) event()   {}
func (Result) event()    {}

// Passed reports whether the assertion counts as passing.
func (a Assertion) Passed() bool { return a.OK }

// PlannedCount returns the number of assertions the plan declares.
func (p Plan) PlannedCount() int {
	if p.To < p.From {
		return 0
	}
	return p.To - p.From + 1
}

// Each event marshals with its "type" tag alongside its own fields.

func (t Test) MarshalJSON() ([]byte, error) {
	type fields Test
	return json.Marshal(struct {
		Type EventType `json:"type"`
		fields
	}{TypeTest, fields(t)})
}

func (a Assertion) MarshalJSON() ([]byte, error) {
	type fields Assertion
	f := fields(a)
	if f.Diagnostic == nil {
		f.Diagnostic = Diagnostic{}
	}
	return json.Marshal(struct {
		Type EventType `json:"type"`
		fields
	}{TypeAssertion, f})
}

func (c Comment) MarshalJSON() ([]byte, error) {
	type fields Comment
	return json.Marshal(struct {
		Type EventType `json:"type"`
		fields
	}{TypeComment, fields(c)})
}

func (p Plan) MarshalJSON() ([]byte, error) {
	type fields Plan
	return json.Marshal(struct {
		Type EventType `json:"type"`
		fields
	}{TypePlan, fields(p)})
}

func (v Version) MarshalJSON() ([]byte, error) {
	type fields Version
	return json.Marshal(struct {
		Type EventType `json:"type"`
		fields
	}{TypeVersion, fields(v)})
}

func (r Result) MarshalJSON() ([]byte, error) {
	type fields Result
	return json.Marshal(struct {
		Type EventType `json:"type"`
		fields
	}{TypeResult, fields(r)})
}
