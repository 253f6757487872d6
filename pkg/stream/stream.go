package stream

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dkoosis/tapout/pkg/tap"
)

// LineKind identifies the type of output line for styling.
type LineKind int

const (
	KindPass LineKind = iota
	KindFail
	KindSkip
	KindTodo
	KindGroup
	KindOutput
	KindSeparator
)

// StyleFunc formats a line with colors/symbols.
// If nil, no styling is applied.
type StyleFunc func(kind LineKind, text string) string

const (
	diagIndent   = "        "
	maxDiagLines = 12
	maxFooterArg = 40
)

// streamer renders TAP events as they are emitted.
type streamer struct {
	tw    *termWriter
	style StyleFunc
	start time.Time

	group     string // current test header
	groupSeen int    // assertions under the current header
	last      string // most recent assertion title

	passed    int
	failed    int
	skipped   int
	todo      int
	planned   int
	hasPlan   bool
	truncated bool
}

func newStreamer(tw *termWriter, style StyleFunc) *streamer {
	return &streamer{tw: tw, style: style, start: time.Now()}
}

func (s *streamer) styleLine(kind LineKind, text string) string {
	if s.style != nil {
		return s.style(kind, text)
	}
	return text
}

func (s *streamer) print(kind LineKind, text string) {
	s.tw.EraseFooter()
	s.tw.PrintLine(s.styleLine(kind, text))
}

// handleEvent processes a single event and redraws the footer.
func (s *streamer) handleEvent(ev tap.Event) {
	switch v := ev.(type) {
	case tap.Test:
		s.group = v.Title
		s.groupSeen = 0
		s.print(KindGroup, "  "+v.Title)
	case tap.Assertion:
		s.handleAssertion(v)
	case tap.Comment:
		s.print(KindOutput, "    "+v.Title)
	case tap.Plan:
		if !s.hasPlan {
			s.hasPlan = true
			s.planned = v.PlannedCount()
		}
	case tap.Version, tap.Result:
		// counts are kept locally
	}
	s.redrawFooter()
}

func (s *streamer) handleAssertion(a tap.Assertion) {
	s.groupSeen++
	s.last = a.Title

	if a.Directive != nil {
		switch a.Directive.Kind {
		case tap.DirectiveSkip:
			s.skipped++
		case tap.DirectiveTodo:
			s.todo++
		}
	}

	if a.OK {
		s.passed++
		kind, icon := KindPass, "✓"
		if a.Directive != nil && a.Directive.Kind == tap.DirectiveSkip {
			kind, icon = KindSkip, "○"
		}
		s.print(kind, fmt.Sprintf("    %s %s", icon, a.Title))
		return
	}

	s.failed++
	kind := KindFail
	if a.Directive != nil && a.Directive.Kind == tap.DirectiveTodo {
		kind = KindTodo
	}
	s.print(kind, fmt.Sprintf("    ✗ %s  (line %d)", a.Title, a.LineNumber))
	s.printDiagnostic(a.RawDiagnostic)
}

// printDiagnostic echoes the interior of a diagnostic block, delimiters
// dropped.
func (s *streamer) printDiagnostic(raw string) {
	if raw == "" {
		return
	}
	lines := strings.Split(raw, "\n")
	if len(lines) >= 2 {
		lines = lines[1 : len(lines)-1]
	}
	for i, l := range lines {
		if i == maxDiagLines {
			s.tw.PrintLine(s.styleLine(KindOutput, fmt.Sprintf("%s... (%d more lines)", diagIndent, len(lines)-i)))
			return
		}
		s.tw.PrintLine(s.styleLine(KindOutput, diagIndent+strings.TrimSpace(l)))
	}
}

// redrawFooter rebuilds the progress footer.
func (s *streamer) redrawFooter() {
	s.tw.EraseFooter()
	total := s.passed + s.failed
	if total == 0 {
		return
	}

	lines := []string{"  ─── running " + strings.Repeat("─", 30)}
	group := s.group
	if group == "" {
		group = "(top level)"
	}
	last := s.last
	if len([]rune(last)) > maxFooterArg {
		last = string([]rune(last)[:maxFooterArg-3]) + "..."
	}
	lines = append(lines, fmt.Sprintf("  %s [%d] %s", group, s.groupSeen, last))

	counts := fmt.Sprintf("  ✓ %d  ✗ %d", s.passed, s.failed)
	if s.hasPlan {
		counts += fmt.Sprintf("  %d/%d planned", total, s.planned)
	}
	counts += fmt.Sprintf("  %.1fs", time.Since(s.start).Seconds())
	lines = append(lines, counts)

	s.tw.DrawFooter(lines)
}

func (s *streamer) hasFailed() bool {
	total := s.passed + s.failed
	return s.failed > 0 || s.truncated || (s.hasPlan && s.planned != total)
}

// finish erases the footer and prints the final summary line.
func (s *streamer) finish() {
	s.tw.EraseFooter()

	total := s.passed + s.failed
	s.tw.PrintLine(s.styleLine(KindSeparator, "  "+strings.Repeat("─", 45)))

	if s.truncated {
		s.tw.PrintLine(s.styleLine(KindFail, "  input ended inside a diagnostic block"))
	}

	var extras []string
	if s.skipped > 0 {
		extras = append(extras, fmt.Sprintf("%d skipped", s.skipped))
	}
	if s.todo > 0 {
		extras = append(extras, fmt.Sprintf("%d todo", s.todo))
	}
	if s.hasPlan && s.planned != total {
		extras = append(extras, fmt.Sprintf("planned %d", s.planned))
	}
	suffix := ""
	if len(extras) > 0 {
		suffix = ", " + strings.Join(extras, ", ")
	}

	elapsed := time.Since(s.start).Seconds()
	if s.hasFailed() {
		s.tw.PrintLine(s.styleLine(KindFail, fmt.Sprintf("  FAIL (%.1fs) %d/%d assertions%s",
			elapsed, s.failed, total, suffix)))
		return
	}
	s.tw.PrintLine(s.styleLine(KindPass, fmt.Sprintf("  PASS (%.1fs) %d assertions%s",
		elapsed, total, suffix)))
}

// Run reads TAP from r and renders it to out as it arrives.
// Returns exit code: 0=all pass, 1=failures or truncated input, 2=error,
// 130=interrupted.
func Run(ctx context.Context, r io.Reader, out io.Writer, width, height int, style StyleFunc, opts ...tap.Option) int {
	tw := newTermWriter(out, width, height)
	s := newStreamer(tw, style)

	truncated, err := tap.Stream(ctx, r, s.handleEvent, opts...)
	s.truncated = truncated
	s.finish()
	if err != nil {
		if ctx.Err() != nil {
			return 130
		}
		tw.PrintLine(s.styleLine(KindFail, "  error: "+err.Error()))
		return 2
	}
	if s.hasFailed() {
		return 1
	}
	return 0
}
