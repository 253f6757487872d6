// Package detect sniffs stdin to determine the input format.
package detect

import (
	"bufio"
	"bytes"
	"encoding/json"

	"github.com/dkoosis/tapout/pkg/tap"
)

// Format represents a recognized input format.
type Format int

const (
	Unknown Format = iota
	TAP            // TAP text stream
	JSON           // a JSON document or NDJSON stream, e.g. go test -json
)

func (f Format) String() string {
	switch f {
	case TAP:
		return "tap"
	case JSON:
		return "json"
	default:
		return "unknown"
	}
}

// maxProbeLines bounds how far into the input Sniff looks.
const maxProbeLines = 20

// Sniff examines the first lines of input to determine format. Producers
// often print banners before their TAP output, so the first structural line
// within the probe window decides.
func Sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return Unknown
	}
	if (trimmed[0] == '{' || trimmed[0] == '[') && isJSON(trimmed) {
		return JSON
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 0; n < maxProbeLines && sc.Scan(); n++ {
		switch tap.Classify(sc.Text()) {
		case tap.KindVersion, tap.KindPlan, tap.KindAssertion:
			return TAP
		}
	}
	return Unknown
}

func isJSON(data []byte) bool {
	// go test -json is NDJSON; the first line stands on its own.
	if i := bytes.IndexByte(data, '\n'); i >= 0 && json.Valid(bytes.TrimSpace(data[:i])) {
		return true
	}
	return json.Valid(data)
}
