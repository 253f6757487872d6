// Package mapper converts parsed TAP sessions into visualization patterns.
package mapper

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/tapout/pkg/pattern"
	"github.com/dkoosis/tapout/pkg/tap"
)

const (
	maxLeaderboard  = 10
	maxDetailLines  = 5
	minSparkGroups  = 3
	untitledGroup   = "(top level)"
	untitledAssert  = "(untitled)"
	diagnosticWidth = 200
)

// Diagnostic keys shown first, in this order. Remaining keys follow sorted.
var leadingKeys = []string{"message", "operator", "expected", "actual", "at"}

// FromTAP converts a session into patterns.
// Returns: Summary + Comparison on plan mismatch + TestTable per failing
// group + Leaderboard when several groups fail + Sparkline of group pass
// rates + TestTable for passing groups.
func FromTAP(s *tap.Session, elapsed time.Duration) []pattern.Pattern {
	stats := tap.ComputeStats(s)
	groups := s.Groups()

	patterns := []pattern.Pattern{tapSummary(stats, elapsed)}

	if stats.PlanMismatch {
		patterns = append(patterns, planComparison(stats))
	}

	var failing []tap.Group
	for _, g := range groups {
		if g.Failed() > 0 {
			failing = append(failing, g)
			patterns = append(patterns, failedGroupTable(g))
		}
	}

	if len(failing) >= 2 {
		patterns = append(patterns, failureLeaderboard(failing))
	}

	if spark := passRateSparkline(groups); spark != nil {
		patterns = append(patterns, spark)
	}

	var passItems []pattern.TestTableItem
	for _, g := range groups {
		if g.Failed() == 0 && len(g.Assertions) > 0 {
			passItems = append(passItems, pattern.TestTableItem{
				Name:   groupName(g),
				Status: groupStatus(g),
				Line:   g.Test.LineNumber,
				Count:  len(g.Assertions),
			})
		}
	}
	if len(passItems) > 0 {
		patterns = append(patterns, &pattern.TestTable{
			Label:   fmt.Sprintf("Passing Groups (%d)", len(passItems)),
			Results: passItems,
		})
	}

	return patterns
}

func tapSummary(s tap.Stats, elapsed time.Duration) *pattern.Summary {
	var metrics []pattern.SummaryItem

	if s.Truncated {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Truncated", Value: "input ended inside a diagnostic block", Kind: "error",
		})
	}
	if s.Failed > 0 {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Failed", Value: fmt.Sprintf("%d/%d assertions", s.Failed, s.Assertions), Kind: "error",
		})
	}
	if s.Passed > 0 {
		kind := "success"
		if s.Failing() {
			kind = "info"
		}
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Passed", Value: fmt.Sprintf("%d/%d assertions", s.Passed, s.Assertions), Kind: kind,
		})
	}
	if s.Todo > 0 {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Todo", Value: fmt.Sprintf("%d", s.Todo), Kind: "warning",
		})
	}
	if s.Skipped > 0 {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Skipped", Value: fmt.Sprintf("%d", s.Skipped), Kind: "warning",
		})
	}
	if s.HasPlan {
		kind, value := "info", fmt.Sprintf("%d planned", s.Planned)
		if s.PlanSkip != "" {
			value += ", skipped: " + s.PlanSkip
		}
		if s.PlanMismatch {
			kind = "error"
			value = fmt.Sprintf("%d planned, %d ran", s.Planned, s.Assertions)
		}
		metrics = append(metrics, pattern.SummaryItem{Label: "Plan", Value: value, Kind: kind})
	}
	metrics = append(metrics, pattern.SummaryItem{
		Label: "Tests", Value: fmt.Sprintf("%d", s.Tests), Kind: "info",
	})

	if !s.Failing() {
		return &pattern.Summary{
			Label:   fmt.Sprintf("PASS %d assertions (%s)", s.Assertions, formatDuration(elapsed)),
			Kind:    pattern.SummaryKindPass,
			Metrics: metrics,
		}
	}

	var reasons []string
	if s.Failed > 0 {
		reasons = append(reasons, fmt.Sprintf("%d/%d assertions", s.Failed, s.Assertions))
	}
	if s.PlanMismatch {
		reasons = append(reasons, "plan mismatch")
	}
	if s.Truncated {
		reasons = append(reasons, "truncated")
	}
	return &pattern.Summary{
		Label:   fmt.Sprintf("FAIL %s (%s)", strings.Join(reasons, ", "), formatDuration(elapsed)),
		Kind:    pattern.SummaryKindFail,
		Metrics: metrics,
	}
}

func planComparison(s tap.Stats) *pattern.Comparison {
	return &pattern.Comparison{
		Label: "Plan",
		Changes: []pattern.ComparisonItem{{
			Label:  "Assertions",
			Before: fmt.Sprintf("%d", s.Planned),
			After:  fmt.Sprintf("%d", s.Assertions),
			Change: float64(s.Assertions - s.Planned),
		}},
	}
}

func failedGroupTable(g tap.Group) *pattern.TestTable {
	items := make([]pattern.TestTableItem, 0, g.Failed())
	for _, a := range g.Assertions {
		if a.OK {
			continue
		}
		items = append(items, pattern.TestTableItem{
			Name:    assertionName(a),
			Status:  assertionStatus(a),
			Line:    a.LineNumber,
			Details: assertionDetails(a),
		})
	}
	return &pattern.TestTable{
		Label:   fmt.Sprintf("FAIL %s (%d/%d failed)", groupName(g), g.Failed(), len(g.Assertions)),
		Results: items,
	}
}

func failureLeaderboard(failing []tap.Group) *pattern.Leaderboard {
	sorted := make([]tap.Group, len(failing))
	copy(sorted, failing)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Failed() > sorted[j].Failed()
	})

	items := make([]pattern.LeaderboardItem, 0, min(len(sorted), maxLeaderboard))
	for i, g := range sorted {
		if i >= maxLeaderboard {
			break
		}
		items = append(items, pattern.LeaderboardItem{
			Name:   groupName(g),
			Metric: fmt.Sprintf("%d failed", g.Failed()),
			Value:  float64(g.Failed()),
			Rank:   i + 1,
		})
	}
	return &pattern.Leaderboard{
		Label:      "Most Failures",
		MetricName: "Failures",
		Items:      items,
		TotalCount: len(sorted),
		ShowRank:   true,
	}
}

func passRateSparkline(groups []tap.Group) *pattern.Sparkline {
	var values []float64
	for _, g := range groups {
		if len(g.Assertions) == 0 {
			continue
		}
		passed := len(g.Assertions) - g.Failed()
		values = append(values, 100*float64(passed)/float64(len(g.Assertions)))
	}
	if len(values) < minSparkGroups {
		return nil
	}
	return &pattern.Sparkline{
		Label:  "Pass rate by group",
		Values: values,
		Min:    0,
		Max:    100,
		Unit:   "%",
	}
}

func groupName(g tap.Group) string {
	if g.Test.Title == "" {
		return untitledGroup
	}
	return g.Test.Title
}

func groupStatus(g tap.Group) string {
	for _, a := range g.Assertions {
		if a.Directive == nil || a.Directive.Kind != tap.DirectiveSkip {
			return pattern.StatusPass
		}
	}
	return pattern.StatusSkip
}

func assertionName(a tap.Assertion) string {
	if a.Title == "" {
		return fmt.Sprintf("%s #%d", untitledAssert, a.AssertionNumber)
	}
	return a.Title
}

func assertionStatus(a tap.Assertion) string {
	if a.Directive != nil {
		switch a.Directive.Kind {
		case tap.DirectiveTodo:
			return pattern.StatusTodo
		case tap.DirectiveSkip:
			return pattern.StatusSkip
		}
	}
	if a.OK {
		return pattern.StatusPass
	}
	return pattern.StatusFail
}

// assertionDetails formats the mapping diagnostic, or a single line for a
// diagnostic block that held a bare scalar or sequence.
func assertionDetails(a tap.Assertion) string {
	if len(a.Diagnostic) == 0 && a.DiagnosticValue != nil {
		return "Diagnostic: " + formatValue(a.DiagnosticValue)
	}
	return diagnosticDetails(a.Diagnostic)
}

// diagnosticDetails formats a diagnostic as "Key: value" lines, leading keys
// first, truncated to maxDetailLines.
func diagnosticDetails(d tap.Diagnostic) string {
	if len(d) == 0 {
		return ""
	}
	keys := make([]string, 0, len(d))
	seen := make(map[string]bool, len(leadingKeys))
	for _, k := range leadingKeys {
		if _, ok := d[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range d {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	caser := cases.Title(language.English)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, caser.String(k)+": "+formatValue(d[k]))
	}
	return truncateLines(lines, maxDetailLines)
}

func formatValue(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		s = "null"
	case string:
		s = x
	default:
		s = fmt.Sprintf("%v", x)
	}
	s = strings.Join(strings.Fields(s), " ")
	return truncateString(s, diagnosticWidth)
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func truncateLines(lines []string, max int) string {
	if len(lines) <= max {
		return strings.Join(lines, "\n")
	}
	result := strings.Join(lines[:max], "\n")
	return result + fmt.Sprintf("\n... (%d more lines)", len(lines)-max)
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
