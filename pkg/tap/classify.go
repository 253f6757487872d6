package tap

import (
	"regexp"
	"strings"
)

// Kind classifies a single raw TAP line.
type Kind int

const (
	KindUnclassified Kind = iota // free-text commentary
	KindTest                     // "# title" group header
	KindAssertion                // "ok" / "not ok"
	KindPlan                     // "1..N"
	KindVersion                  // "TAP version N"
	KindBlockStart               // "  ---"
	KindBlockEnd                 // "  ..."
)

func (k Kind) String() string {
	switch k {
	case KindTest:
		return "test"
	case KindAssertion:
		return "assertion"
	case KindPlan:
		return "plan"
	case KindVersion:
		return "version"
	case KindBlockStart:
		return "block-start"
	case KindBlockEnd:
		return "block-end"
	default:
		return "unclassified"
	}
}

// Static regexes for TAP line recognition.
var (
	assertionRe = regexp.MustCompile(`^(not )?ok\b(?:(?:\s+(\d+))?(?:\s+(?:(?:\s*-\s*)?(.*)))?)?`)
	resultRe    = regexp.MustCompile(`(?i)(#)(\s+)([a-z][a-z]+)(\s+)(\d+)`)
	planRe      = regexp.MustCompile(`^(\d+)\.\.(\d+)\b(?:\s+#\s+SKIP\s+(.*)$)?`)
	testRe      = regexp.MustCompile(`^#\s*(.+)`)
	versionRe   = regexp.MustCompile(`(?i)^TAP\s+version\s+(\d+)`)
	directiveRe = regexp.MustCompile(`(?i)^(.*?)\s*#\s*(TODO|SKIP)\b\s*(.*)$`)
)

const (
	blockStartMarker = "  ---"
	blockEndMarker   = "  ..."
	okComment        = "# ok"
)

// Reserved summary headers. A "#" line containing any of these is never a test.
var reservedHeaders = []string{"# tests", "# pass", "# fail"}

// Classify returns the kind of raw. First match wins; the result depends only
// on raw.
func Classify(raw string) Kind {
	switch {
	case isTest(raw):
		return KindTest
	case assertionRe.MatchString(raw):
		return KindAssertion
	case planRe.MatchString(raw):
		return KindPlan
	case versionRe.MatchString(raw):
		return KindVersion
	case strings.HasPrefix(raw, blockStartMarker):
		return KindBlockStart
	case strings.HasPrefix(raw, blockEndMarker):
		return KindBlockEnd
	default:
		return KindUnclassified
	}
}

func isTest(raw string) bool {
	if !testRe.MatchString(raw) || raw == okComment {
		return false
	}
	for _, h := range reservedHeaders {
		if strings.Contains(raw, h) {
			return false
		}
	}
	return true
}

// IsResultLine reports whether raw looks like a "# name count" summary line,
// e.g. "# pass 12". Such lines are produced by TAP emitters and are re-derived
// by the parser, so they are never surfaced as comments.
func IsResultLine(raw string) bool {
	return resultRe.MatchString(raw)
}
