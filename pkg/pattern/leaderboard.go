package pattern

// Leaderboard ranks test groups by failure count.
type Leaderboard struct {
	Label      string
	MetricName string // e.g., "Failures"
	Items      []LeaderboardItem
	TotalCount int // total before filtering to top N
	ShowRank   bool
}

// LeaderboardItem is a single ranked entry.
type LeaderboardItem struct {
	Name   string
	Metric string // formatted value, e.g. "3 failed"
	Value  float64
	Rank   int
}

func (l *Leaderboard) Type() PatternType { return PatternTypeLeaderboard }
