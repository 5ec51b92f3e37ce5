package bintext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for programmatic error handling.
var (
	ErrInvalidEscapeSequence = errors.New("invalid escape sequence")
	ErrConflictingFilters    = errors.New("only one of include and exclude may be specified")
	ErrDecode                = errors.New("decode error")
)

// DefaultSeparator is the column separator used when none is configured.
const DefaultSeparator = ","

// Option configures a [Renderer].
type Option func(*options)

type options struct {
	sep       string
	filter    Filter
	onlyNames bool
	logger    *slog.Logger
}

func defaultOptions() options {
	return options{
		sep:    DefaultSeparator,
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithSeparator sets the literal string written between values of a row.
// An empty separator joins values with nothing between them. Escapes are
// not interpreted here; see [ExpandEscapes].
func WithSeparator(sep string) Option {
	return func(o *options) { o.sep = sep }
}

// WithFilter sets the table filter.
func WithFilter(f Filter) Option {
	return func(o *options) { o.filter = f }
}

// WithOnlyNames makes the renderer list table names without their bodies.
func WithOnlyNames(on bool) Option {
	return func(o *options) { o.onlyNames = on }
}

// WithLogger sets the logger used for debug diagnostics.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Config is the user-facing configuration of a render, as typed on a
// command line. Separator is raw and still contains backslash escapes.
type Config struct {
	Separator string
	Include   []string
	Exclude   []string
	OnlyNames bool
}

// Options validates c and converts it into renderer options. It fails with
// [ErrConflictingFilters] when both Include and Exclude are set and with
// [ErrInvalidEscapeSequence] when Separator contains a bad escape.
func (c Config) Options() ([]Option, error) {
	f, err := NewFilter(c.Include, c.Exclude)
	if err != nil {
		return nil, err
	}
	sep, err := ExpandEscapes(c.Separator)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithSeparator(sep),
		WithFilter(f),
		WithOnlyNames(c.OnlyNames),
	}, nil
}

// EscapeError reports a backslash escape that ExpandEscapes does not know.
type EscapeError struct {
	Sequence string // offending sequence including the backslash
	Input    string // full string being expanded
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("unrecognized escape sequence %q in %q", e.Sequence, e.Input)
}

// Is reports whether target is [ErrInvalidEscapeSequence].
func (e *EscapeError) Is(target error) bool { return target == ErrInvalidEscapeSequence }

// DecodeError wraps an error reported by the decoder while streaming.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return e.Err.Error() }

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// Marshal renders seq and returns the bytes. On a decoder error the output
// rendered before the failure is returned along with the error.
func Marshal(seq EventSeq, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	err := Render(&buf, seq, opts...)
	return buf.Bytes(), err
}

// Render renders every event of seq to w. Output is flushed on every exit
// path, including decoder errors.
func Render(w io.Writer, seq EventSeq, opts ...Option) error {
	return NewRenderer(w, opts...).Render(seq)
}
