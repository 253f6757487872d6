package pattern

// Comparison represents expected/actual metric pairs.
type Comparison struct {
	Label   string
	Changes []ComparisonItem
}

// ComparisonItem is a single expected → actual delta.
type ComparisonItem struct {
	Label  string
	Before string
	After  string
	Change float64 // After minus Before
	Unit   string
}

func (c *Comparison) Type() PatternType { return PatternTypeComparison }
