package tap

import (
	"errors"
	"fmt"
)

// ErrMalformedDiagnostic is matched (errors.Is) by every DiagnosticError.
var ErrMalformedDiagnostic = errors.New("malformed diagnostic block")

// DiagnosticError reports a diagnostic block that failed to decode. It ends
// the parse: no event is emitted for the block or its assertion.
type DiagnosticError struct {
	Line int    // 0-based index of the closing "  ..." line
	Raw  string // de-indented block text handed to the decoder
	Err  error
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("line %d: %v: %v", e.Line, ErrMalformedDiagnostic, e.Err)
}

func (e *DiagnosticError) Unwrap() []error {
	return []error{ErrMalformedDiagnostic, e.Err}
}

// ErrClosed is returned by Feed after Close.
var ErrClosed = errors.New("tap: parser closed")
