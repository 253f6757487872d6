package pattern

// Sparkline is a word-sized trend graphic, one block per value.
type Sparkline struct {
	Label  string
	Values []float64
	Min    float64 // Min and Max both 0 means auto-detect
	Max    float64
	Unit   string // e.g. "%"
}

func (s *Sparkline) Type() PatternType { return PatternTypeSparkline }
