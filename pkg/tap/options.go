package tap

import (
	"io"
	"log/slog"
)

// Default scanner limits.
const (
	initialBufferSize    = 64 * 1024
	DefaultMaxLineLength = 1024 * 1024
)

// Option configures a Parser and the readers built on it.
type Option func(*options)

type options struct {
	decode        DecodeFunc
	logger        *slog.Logger
	maxLineLength int
}

// WithDecodeFunc replaces the YAML diagnostic decoder.
func WithDecodeFunc(fn DecodeFunc) Option {
	return func(o *options) { o.decode = fn }
}

// WithLogger sets the logger used for parse warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMaxLineLength bounds the length of a single input line.
func WithMaxLineLength(n int) Option {
	return func(o *options) { o.maxLineLength = n }
}

func buildOptions(opts []Option) options {
	o := options{maxLineLength: DefaultMaxLineLength}
	for _, opt := range opts {
		opt(&o)
	}
	if o.decode == nil {
		o.decode = DecodeYAML
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.maxLineLength <= 0 {
		o.maxLineLength = DefaultMaxLineLength
	}
	return o
}
