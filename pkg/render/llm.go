package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/tapout/pkg/pattern"
)

const maxLLMDetailLines = 3

// LLM renders patterns as terse plain text optimized for AI consumption.
// Zero ANSI codes, a SCOPE line, failures before passes, bounded detail.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

// Render formats all patterns for LLM consumption.
func (l *LLM) Render(patterns []pattern.Pattern) string {
	var summaries []*pattern.Summary
	var comparisons []*pattern.Comparison
	var boards []*pattern.Leaderboard
	var tables []*pattern.TestTable

	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			summaries = append(summaries, v)
		case *pattern.Comparison:
			comparisons = append(comparisons, v)
		case *pattern.Leaderboard:
			boards = append(boards, v)
		case *pattern.TestTable:
			tables = append(tables, v)
		}
	}

	var sb strings.Builder
	for _, s := range summaries {
		sb.WriteString("SCOPE: " + s.Label + "\n")
		for _, m := range s.Metrics {
			if m.Kind == "error" || m.Kind == "warning" {
				sb.WriteString("  " + m.Label + ": " + m.Value + "\n")
			}
		}
	}

	for _, c := range comparisons {
		for _, item := range c.Changes {
			sb.WriteString(fmt.Sprintf("%s: %s %s expected, %s actual\n",
				strings.ToUpper(c.Label), item.Label, item.Before, item.After))
		}
	}

	for _, t := range tables {
		l.renderTable(&sb, t)
	}

	for _, b := range boards {
		sb.WriteString("\n" + b.Label + "\n")
		for _, item := range b.Items {
			sb.WriteString(fmt.Sprintf("  %d. %s %s\n", item.Rank, item.Name, item.Metric))
		}
	}

	return sb.String()
}

func (l *LLM) renderTable(sb *strings.Builder, t *pattern.TestTable) {
	sb.WriteString("\n" + t.Label + "\n")
	for _, item := range t.Results {
		prefix := "  PASS"
		switch item.Status {
		case pattern.StatusFail:
			prefix = "  FAIL"
		case pattern.StatusSkip:
			prefix = "  SKIP"
		case pattern.StatusTodo:
			prefix = "  TODO"
		}

		var suffix string
		switch {
		case item.Count > 0:
			suffix = fmt.Sprintf(" (%d)", item.Count)
		case item.Line >= 0 && item.Status != pattern.StatusPass:
			suffix = fmt.Sprintf(" (line %d)", item.Line)
		}
		sb.WriteString(fmt.Sprintf("%s %s%s\n", prefix, item.Name, suffix))

		if item.Details != "" {
			lines := strings.Split(item.Details, "\n")
			shown := min(len(lines), maxLLMDetailLines)
			for _, line := range lines[:shown] {
				sb.WriteString("    " + line + "\n")
			}
			if len(lines) > shown {
				sb.WriteString(fmt.Sprintf("    ... (%d more lines)\n", len(lines)-shown))
			}
		}
	}
}
