package pattern

// TestTable lists the assertions of one test group, or a collapsed set of
// passing groups.
type TestTable struct {
	Label   string
	Results []TestTableItem
}

// TestTableItem is a single assertion or group row.
type TestTableItem struct {
	Name    string // assertion title or group name
	Status  string // StatusPass, StatusFail, StatusSkip, StatusTodo
	Line    int    // 0-based input line, -1 when not applicable
	Count   int    // assertions in the group (collapsed rows)
	Details string // diagnostic summary
}

func (t *TestTable) Type() PatternType { return PatternTypeTestTable }
