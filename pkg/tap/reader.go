package tap

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

func newScanner(r io.Reader, o options) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	// Allow long lines for verbose diagnostics
	scanner.Buffer(make([]byte, 0, min(initialBufferSize, o.maxLineLength)), o.maxLineLength)
	return scanner
}

// Decoder reads events from a TAP stream one at a time. Stopping before
// io.EOF is safe; no background work is left behind.
type Decoder struct {
	scanner *bufio.Scanner
	parser  *Parser
	queue   []Event
	done    bool
	err     error
}

// NewDecoder returns a Decoder reading lines from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	o := buildOptions(opts)
	return &Decoder{
		scanner: newScanner(r, o),
		parser:  NewParser(opts...),
	}
}

// Next returns the next event, or io.EOF after the final Result.
func (d *Decoder) Next() (Event, error) {
	for len(d.queue) == 0 {
		if d.err != nil {
			return nil, d.err
		}
		if d.done {
			return nil, io.EOF
		}
		d.fill()
	}
	ev := d.queue[0]
	d.queue = d.queue[1:]
	return ev, nil
}

// Truncated reports whether the stream ended inside a diagnostic block.
// Only meaningful after Next has returned io.EOF.
func (d *Decoder) Truncated() bool {
	return d.parser.Truncated()
}

func (d *Decoder) fill() {
	if d.scanner.Scan() {
		d.queue, d.err = d.parser.Feed(d.scanner.Text())
		return
	}
	if err := d.scanner.Err(); err != nil {
		d.err = fmt.Errorf("scanning TAP input: %w", err)
		return
	}
	d.queue, d.err = d.parser.Close()
	d.done = true
}

// HandlerFunc receives events in emission order.
type HandlerFunc func(Event)

// scanResult carries a scanned line or terminal error from the scanner goroutine.
type scanResult struct {
	line string
	err  error
}

// Stream parses TAP from r and calls fn for each event until EOF, a
// diagnostic decode error, or ctx cancellation. It reports whether the input
// ended inside a diagnostic block.
//
// Cancellation: the scanner runs in a background goroutine. On context cancel,
// Stream closes r (if it implements io.Closer) to unblock the scanner. If r
// does not implement io.Closer the caller must close the underlying reader.
func Stream(ctx context.Context, r io.Reader, fn HandlerFunc, opts ...Option) (truncated bool, err error) {
	o := buildOptions(opts)
	scanner := newScanner(r, o)
	parser := NewParser(opts...)

	lines := make(chan scanResult)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanResult{line: scanner.Text()}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- scanResult{err: err}:
			case <-ctx.Done():
			}
		}
	}()

	deliver := func(events []Event) {
		for _, ev := range events {
			fn(ev)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
			return false, ctx.Err()
		case res, ok := <-lines:
			if !ok {
				// The scanner also stops on cancel; don't report that as EOF.
				if err := ctx.Err(); err != nil {
					return false, err
				}
				events, err := parser.Close()
				if err != nil {
					return false, err
				}
				deliver(events)
				return parser.Truncated(), nil
			}
			if res.err != nil {
				return false, fmt.Errorf("scanning TAP input: %w", res.err)
			}
			events, err := parser.Feed(res.line)
			if err != nil {
				return false, err
			}
			deliver(events)
		}
	}
}

// Parse reads all of r into a Session. On error no Session is returned.
func Parse(r io.Reader, opts ...Option) (*Session, error) {
	dec := NewDecoder(r, opts...)
	var events []Event
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return NewSession(events, dec.Truncated()), nil
}

// ParseBytes is a convenience for parsing from a byte slice.
func ParseBytes(data []byte, opts ...Option) (*Session, error) {
	return Parse(bytes.NewReader(data), opts...)
}
