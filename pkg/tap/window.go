package tap

// Line is a classified input line. Index is 0-based.
type Line struct {
	Raw   string
	Kind  Kind
	Index int
}

// LinePair is a line and its successor. Next.Index == Current.Index+1.
type LinePair struct {
	Current Line
	Next    Line
}

// Window turns pushed lines into adjacent pairs, giving one line of lookahead.
// N pushed lines produce N-1 pairs from Push; Flush pairs the last line with
// an empty end-of-input line.
type Window struct {
	prev    Line
	hasPrev bool
	count   int
}

// Push classifies raw and returns the pair (previous, raw) once a previous
// line exists.
func (w *Window) Push(raw string) (LinePair, bool) {
	line := Line{Raw: raw, Kind: Classify(raw), Index: w.count}
	w.count++

	prev, ok := w.prev, w.hasPrev
	w.prev, w.hasPrev = line, true
	if !ok {
		return LinePair{}, false
	}
	return LinePair{Current: prev, Next: line}, true
}

// Flush returns the final pushed line paired with a synthetic empty
// successor. It returns false when nothing is buffered.
func (w *Window) Flush() (LinePair, bool) {
	if !w.hasPrev {
		return LinePair{}, false
	}
	last := w.prev
	w.hasPrev = false
	end := Line{Raw: "", Kind: KindUnclassified, Index: last.Index + 1}
	return LinePair{Current: last, Next: end}, true
}

// Lines returns the number of lines pushed so far.
func (w *Window) Lines() int {
	return w.count
}
