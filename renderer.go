package bintext

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
)

// State is the position of a [Renderer] in its event stream.
type State int

const (
	Idle    State = iota // no table seen yet
	InTable              // between a TableBegin and the next one
	Done                 // the stream has ended
)

// String returns "idle", "in-table" or "done".
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InTable:
		return "in-table"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Renderer turns events into delimited text in a single forward pass. It
// has one method per event kind and is driven by exactly one caller at a
// time; it is not safe for concurrent use.
//
// Handlers never fail. The first write error is kept, later output is
// skipped, and the error is reported by [Renderer.Err], [Renderer.Flush]
// and [Renderer.Close].
type Renderer struct {
	dst    *bufio.Writer
	closer io.Closer

	sep       string
	filter    Filter
	onlyNames bool
	logger    *slog.Logger

	state      State
	tables     int // tables written so far
	rows       int // data rows written so far
	col        int // values written in the current row
	suppressed bool

	buf []byte
	err error
}

// NewRenderer returns a Renderer writing to w. The caller keeps ownership
// of w; [Renderer.Close] flushes but does not close it.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{
		dst:       bufio.NewWriter(w),
		sep:       o.sep,
		filter:    o.filter,
		onlyNames: o.onlyNames,
		logger:    o.logger,
	}
}

// Create truncates or creates the file at path on fs and returns a Renderer
// that owns it. [Renderer.Close] flushes and closes the file.
func Create(fs afero.Fs, path string, opts ...Option) (*Renderer, error) {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for writing: %w", path, err)
	}
	r := NewRenderer(f, opts...)
	r.closer = f
	return r, nil
}

// State reports where the renderer is in its stream.
func (r *Renderer) State() State { return r.state }

// Tables reports how many tables have been written.
func (r *Renderer) Tables() int { return r.tables }

// Rows reports how many data rows have been written.
func (r *Renderer) Rows() int { return r.rows }

// Err returns the first write or decoder error seen by the renderer.
func (r *Renderer) Err() error { return r.err }

// BeginTable starts a table. Whether the table is rendered is decided here
// and holds until the next BeginTable.
func (r *Renderer) BeginTable(name string, kind TableKind) {
	r.state = InTable
	r.suppressed = r.filter.Suppress(name)
	if r.suppressed {
		r.logger.Debug("table suppressed", "table", name, "kind", kind)
		return
	}
	if r.tables > 0 {
		r.writeByte('\n')
	}
	r.tables++
	r.buf = AppendQuote(r.buf[:0], name)
	r.buf = append(r.buf, '\n')
	r.write(r.buf)
	if r.onlyNames {
		r.suppressed = true
	}
}

// BeginColumns starts the header row.
func (r *Renderer) BeginColumns() { r.beginRow() }

// BeginRow starts a data row.
func (r *Renderer) BeginRow() { r.beginRow() }

func (r *Renderer) beginRow() {
	if r.suppressed {
		return
	}
	r.col = 0
}

// ColumnHeader writes one column name of the header row. The declared
// column type does not affect the output.
func (r *Renderer) ColumnHeader(name string, _ ValueType) {
	r.Value(StringValue(name))
}

// Uint64 writes an unsigned integer cell in decimal.
func (r *Renderer) Uint64(v uint64) { r.Value(Uint64Value(v)) }

// Text writes a quoted string cell.
func (r *Renderer) Text(v string) { r.Value(StringValue(v)) }

// Bool writes a TRUE or FALSE cell.
func (r *Renderer) Bool(v bool) { r.Value(BoolValue(v)) }

// Value writes one cell of the current row.
func (r *Renderer) Value(v Value) {
	if r.suppressed {
		return
	}
	r.buf = r.buf[:0]
	if r.col > 0 {
		r.buf = append(r.buf, r.sep...)
	}
	r.buf = v.AppendCell(r.buf)
	r.write(r.buf)
	r.col++
}

// EndColumns ends the header row.
func (r *Renderer) EndColumns() { r.endRow() }

// EndRow ends a data row.
func (r *Renderer) EndRow() {
	if !r.suppressed {
		r.rows++
	}
	r.endRow()
}

func (r *Renderer) endRow() {
	if r.suppressed {
		return
	}
	r.writeByte('\n')
}

// EndTable ends the current table. Tables have no closing line, so nothing
// is written.
func (r *Renderer) EndTable() {}

// Handle dispatches ev to the handler for its kind. Unknown kinds are
// ignored.
func (r *Renderer) Handle(ev Event) {
	switch ev.Kind {
	case TableBegin:
		r.BeginTable(ev.Name, ev.Table)
	case ColumnBegin:
		r.BeginColumns()
	case ColumnHeader:
		r.ColumnHeader(ev.Name, ev.Type)
	case ColumnEnd:
		r.EndColumns()
	case RowBegin:
		r.BeginRow()
	case DataValue:
		r.Value(ev.Value)
	case RowEnd:
		r.EndRow()
	case TableEnd:
		r.EndTable()
	default:
		r.logger.Debug("ignoring unknown event", "kind", ev.Kind)
	}
}

// Fail records a decoder error. Nothing more is written, and the error is
// returned from Err, Flush and Close as a [*DecodeError].
func (r *Renderer) Fail(err error) {
	if err == nil || r.err != nil {
		return
	}
	r.logger.Debug("decoder failed", "err", err, "tables", r.tables, "rows", r.rows)
	r.err = &DecodeError{Err: err}
}

// Render handles every event of seq in order, stopping at the first
// decoder or write error, and flushes the output.
func (r *Renderer) Render(seq EventSeq) error {
	for ev, err := range seq {
		if err != nil {
			r.Fail(err)
			break
		}
		r.Handle(ev)
		if r.err != nil {
			break
		}
	}
	r.state = Done
	r.logger.Debug("render finished", "tables", r.tables, "rows", r.rows)
	return r.Flush()
}

// Flush writes buffered output to the underlying writer and returns the
// first error seen, which may be a decoder error recorded before the flush.
func (r *Renderer) Flush() error {
	err := r.dst.Flush()
	switch {
	case err == nil || errors.Is(r.err, err):
	case r.err == nil:
		r.err = err
	default:
		r.err = errors.Join(r.err, err)
	}
	return r.err
}

// Close flushes the output and closes it when the renderer opened it.
func (r *Renderer) Close() error {
	err := r.Flush()
	if r.closer != nil {
		if cerr := r.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
		r.closer = nil
	}
	return err
}

// Callbacks returns a callback table that drives r, for decoders that push
// events through callbacks instead of yielding them.
func (r *Renderer) Callbacks() Callbacks {
	cb := callbacksFor(func(ev Event) bool {
		r.Handle(ev)
		return r.err == nil
	})
	cb.Error = r.Fail
	return cb
}

func (r *Renderer) write(p []byte) {
	if r.err != nil {
		return
	}
	if _, err := r.dst.Write(p); err != nil {
		r.err = err
	}
}

func (r *Renderer) writeByte(c byte) {
	if r.err != nil {
		return
	}
	if err := r.dst.WriteByte(c); err != nil {
		r.err = err
	}
}
