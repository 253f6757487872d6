// Package render provides output renderers for tapout's visualization patterns.
package render

import "github.com/dkoosis/tapout/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}
