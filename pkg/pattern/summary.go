package pattern

// SummaryKind tells renderers whether the run passed.
type SummaryKind string

const (
	SummaryKindPass SummaryKind = "pass"
	SummaryKindFail SummaryKind = "fail"
)

// Summary represents high-level metrics and counts.
type Summary struct {
	Label   string
	Kind    SummaryKind
	Metrics []SummaryItem
}

// SummaryItem is a single metric in a summary.
type SummaryItem struct {
	Label string // e.g., "Failed", "Passed", "Plan"
	Value string // formatted value
	Kind  string // "success", "error", "warning", "info"; affects coloring
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
