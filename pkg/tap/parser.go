package tap

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Parser folds TAP lines into events. It is not safe for concurrent use and
// must have a single consumer: the events it returns are the only record of
// the parse.
type Parser struct {
	window Window
	blocks *blockExtractor
	logger *slog.Logger

	testNumber      int
	assertionNumber int
	pending         *Assertion // waiting for the block that follows it

	total, passed, failed int

	truncated bool
	closed    bool
	err       error
}

// NewParser returns a parser configured by opts.
func NewParser(opts ...Option) *Parser {
	o := buildOptions(opts)
	return &Parser{
		blocks: newBlockExtractor(o.decode),
		logger: o.logger,
	}
}

// Feed consumes one line (without its trailing newline) and returns the
// events that became final. Events for a line are produced when its
// successor arrives, or on Close for the last line.
func (p *Parser) Feed(raw string) ([]Event, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.closed {
		return nil, ErrClosed
	}
	pair, ok := p.window.Push(raw)
	if !ok {
		return nil, nil
	}
	return p.step(pair, nil)
}

// Close flushes the last line and appends the tests/pass/fail results. An
// assertion still waiting for an unterminated diagnostic block is dropped;
// Truncated reports that case. Close is idempotent.
func (p *Parser) Close() ([]Event, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.closed {
		return nil, nil
	}
	p.closed = true

	var out []Event
	if pair, ok := p.window.Flush(); ok {
		var err error
		if out, err = p.step(pair, nil); err != nil {
			return nil, err
		}
	}

	if p.blocks.reset() || p.pending != nil {
		p.truncated = true
		if p.pending != nil {
			p.logger.Warn("input ended inside a diagnostic block; assertion dropped",
				"assertion", p.pending.AssertionNumber, "line", p.pending.LineNumber)
			p.pending = nil
		} else {
			p.logger.Warn("input ended inside a diagnostic block")
		}
	}

	out = append(out,
		newResult(ResultTests, p.total),
		newResult(ResultPass, p.passed),
		newResult(ResultFail, p.failed),
	)
	return out, nil
}

// Truncated reports whether the input ended inside a diagnostic block.
func (p *Parser) Truncated() bool {
	return p.truncated
}

func (p *Parser) step(pair LinePair, out []Event) ([]Event, error) {
	closed, err := p.blocks.step(pair)
	if err != nil {
		p.err = err
		p.pending = nil
		return nil, err
	}

	cur := pair.Current
	switch cur.Kind {
	case KindTest:
		p.testNumber++
		out = append(out, Test{
			Raw:        cur.Raw,
			Title:      strings.Replace(cur.Raw, "# ", "", 1),
			LineNumber: cur.Index,
			TestNumber: p.testNumber,
		})

	case KindAssertion:
		p.assertionNumber++
		a := parseAssertion(cur, p.assertionNumber)
		if pair.Next.Kind != KindBlockStart {
			out = p.emit(out, a)
			break
		}
		if p.pending != nil {
			p.logger.Debug("assertion superseded while waiting for diagnostic",
				"assertion", p.pending.AssertionNumber)
			out = p.emit(out, *p.pending)
		}
		p.pending = &a

	case KindPlan:
		out = append(out, parsePlan(cur))

	case KindVersion:
		m := versionRe.FindStringSubmatch(cur.Raw)
		v, _ := strconv.Atoi(m[1])
		out = append(out, Version{Raw: cur.Raw, Version: v, LineNumber: cur.Index})

	case KindBlockEnd:
		if closed != nil && p.pending != nil {
			a := *p.pending
			p.pending = nil
			a.Diagnostic = closed.diagnostic
			a.DiagnosticValue = closed.value
			a.RawDiagnostic = closed.raw
			a.Raw += "\n" + closed.raw
			out = p.emit(out, a)
		}

	case KindUnclassified:
		if isComment(cur.Raw) && !p.blocks.inside() {
			out = append(out, Comment{Raw: cur.Raw, Title: cur.Raw, LineNumber: cur.Index})
		}
	}
	return out, nil
}

// emit stamps the current test number and counts the assertion.
func (p *Parser) emit(out []Event, a Assertion) []Event {
	a.TestNumber = p.testNumber
	if a.Diagnostic == nil {
		a.Diagnostic = Diagnostic{}
	}
	p.total++
	if a.OK {
		p.passed++
	} else {
		p.failed++
	}
	return append(out, a)
}

func parseAssertion(line Line, number int) Assertion {
	m := assertionRe.FindStringSubmatch(line.Raw)
	a := Assertion{
		Raw:             line.Raw,
		OK:              m[1] == "",
		Title:           m[3],
		LineNumber:      line.Index,
		AssertionNumber: number,
	}
	if m[2] != "" {
		a.Number, _ = strconv.Atoi(m[2])
	}
	if d := directiveRe.FindStringSubmatch(a.Title); d != nil {
		a.Directive = &Directive{
			Kind:   DirectiveKind(strings.ToLower(d[2])),
			Reason: strings.TrimSpace(d[3]),
		}
	}
	return a
}

func parsePlan(line Line) Plan {
	m := planRe.FindStringSubmatch(line.Raw)
	from, _ := strconv.Atoi(m[1])
	to, _ := strconv.Atoi(m[2])
	return Plan{Raw: line.Raw, From: from, To: to, Skip: m[3], LineNumber: line.Index}
}

func isComment(raw string) bool {
	return strings.TrimSpace(raw) != "" && raw != okComment && !IsResultLine(raw)
}

func newResult(name string, count int) Result {
	return Result{Raw: fmt.Sprintf("# %s %d", name, count), Name: name, Count: count}
}
