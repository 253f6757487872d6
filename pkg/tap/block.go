package tap

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// blockIndent is the fixed indentation stripped from each block line.
const blockIndent = 2

// DecodeFunc turns the de-indented text of a diagnostic block into a value.
// It must fail on text that is not well-formed. A mapping becomes the
// assertion's Diagnostic; any other value is kept as its DiagnosticValue.
type DecodeFunc func(text string) (any, error)

// DecodeYAML is the default DecodeFunc. Any well-formed YAML document is
// accepted. Mapping keys are stringified at every depth so the result always
// encodes as JSON.
func DecodeYAML(text string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}
	return jsonSafe(v), nil
}

// jsonSafe rewrites yaml.v3 output into values encoding/json accepts.
func jsonSafe(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = jsonSafe(e)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = jsonSafe(e)
		}
		return m
	case []any:
		for i, e := range x {
			x[i] = jsonSafe(e)
		}
		return x
	case float64:
		// .inf and .nan have no JSON number form.
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
		return x
	default:
		return v
	}
}

// splitDiagnostic separates a decoded document into the mapping view and
// the non-mapping value. Empty documents yield an empty Diagnostic.
func splitDiagnostic(v any) (Diagnostic, any) {
	switch x := v.(type) {
	case nil:
		return Diagnostic{}, nil
	case Diagnostic:
		return x, nil
	case map[string]any:
		return Diagnostic(x), nil
	default:
		return Diagnostic{}, x
	}
}

type blockState int

const (
	outsideBlock blockState = iota
	insideBlock
)

// block is the output of one closed diagnostic block.
type block struct {
	diagnostic Diagnostic
	value      any    // non-mapping document, nil otherwise
	raw        string // original lines, delimiters included, joined with \n
}

// blockExtractor accumulates "  ---" ... "  ..." regions.
type blockExtractor struct {
	state  blockState
	lines  []string
	decode DecodeFunc
}

func newBlockExtractor(decode DecodeFunc) *blockExtractor {
	if decode == nil {
		decode = DecodeYAML
	}
	return &blockExtractor{decode: decode}
}

// inside reports whether the last stepped line belongs to an open block.
func (b *blockExtractor) inside() bool {
	return b.state == insideBlock
}

// step advances the machine by one pair. It returns a non-nil block exactly
// when pair.Current closes an open block.
func (b *blockExtractor) step(pair LinePair) (*block, error) {
	cur := pair.Current
	switch {
	case cur.Kind == KindBlockStart:
		// A start inside an open block restarts it.
		b.state = insideBlock
		b.lines = append(b.lines[:0], cur.Raw)
		return nil, nil

	case b.state == outsideBlock:
		return nil, nil

	case cur.Kind == KindBlockEnd:
		b.lines = append(b.lines, cur.Raw)
		b.state = outsideBlock
		return b.finish(cur.Index)

	default:
		b.lines = append(b.lines, cur.Raw)
		return nil, nil
	}
}

func (b *blockExtractor) finish(line int) (*block, error) {
	raw := strings.Join(b.lines, "\n")
	stripped := make([]string, len(b.lines))
	for i, l := range b.lines {
		stripped[i] = dedent(l)
	}
	text := strings.Join(stripped, "\n")
	b.lines = b.lines[:0]

	v, err := b.decode(text)
	if err != nil {
		return nil, &DiagnosticError{Line: line, Raw: text, Err: err}
	}
	d, value := splitDiagnostic(v)
	return &block{diagnostic: d, value: value, raw: raw}, nil
}

// reset discards a partially accumulated block and reports whether one was
// open.
func (b *blockExtractor) reset() bool {
	open := b.state == insideBlock
	b.state = outsideBlock
	b.lines = b.lines[:0]
	return open
}

// dedent strips up to blockIndent leading spaces.
func dedent(line string) string {
	n := 0
	for n < blockIndent && n < len(line) && line[n] == ' ' {
		n++
	}
	return line[n:]
}
