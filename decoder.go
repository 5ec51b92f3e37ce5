package bintext

import "context"

// Decoder streams the tables stored at path as events. The sequence is
// consumed once; decoders report failures as a final non-nil error.
type Decoder interface {
	Decode(ctx context.Context, path string) EventSeq
}

// DecoderFunc adapts a function to the [Decoder] interface.
type DecoderFunc func(ctx context.Context, path string) EventSeq

// Decode calls f(ctx, path).
func (f DecoderFunc) Decode(ctx context.Context, path string) EventSeq { return f(ctx, path) }

// Callbacks is the handler table of a callback-driven decoder: one function
// per event kind. Nil entries are skipped by decoders.
type Callbacks struct {
	Error func(err error)

	BeginBasicTable    func(name string)
	BeginKeyValueTable func(name string)

	BeginColumns func()
	Uint64Column func(name string)
	StringColumn func(name string)
	BoolColumn   func(name string)
	EndColumns   func()

	BeginRow func()
	Uint64   func(v uint64)
	String   func(v string)
	Bool     func(v bool)
	EndRow   func()
}

// callbacksFor returns callbacks that turn every call into an event passed to
// emit. Once emit returns false the remaining calls are dropped.
func callbacksFor(emit func(Event) bool) Callbacks {
	stopped := false
	send := func(ev Event) {
		if stopped {
			return
		}
		stopped = !emit(ev)
	}
	return Callbacks{
		BeginBasicTable:    func(name string) { send(BeginTable(name)) },
		BeginKeyValueTable: func(name string) { send(BeginKeyValueTable(name)) },
		BeginColumns:       func() { send(BeginColumns()) },
		Uint64Column:       func(name string) { send(Header(name, Uint64Type)) },
		StringColumn:       func(name string) { send(Header(name, StringType)) },
		BoolColumn:         func(name string) { send(Header(name, BoolType)) },
		EndColumns:         func() { send(EndColumns()) },
		BeginRow:           func() { send(BeginRow()) },
		Uint64:             func(v uint64) { send(Data(Uint64Value(v))) },
		String:             func(v string) { send(Data(StringValue(v))) },
		Bool:               func(v bool) { send(Data(BoolValue(v))) },
		EndRow:             func() { send(EndRow()) },
	}
}

// PushDecoder is a decoder that drives a [Callbacks] table until the input
// is exhausted, the Error callback has been called or it returns an error.
// Its Decode method turns the pushed calls into an [EventSeq] without
// buffering: each callback yields exactly one event.
type PushDecoder func(ctx context.Context, path string, cb Callbacks) error

// Decode runs p and yields each pushed call as an event. Stopping the
// sequence early turns the remaining callbacks into no-ops.
func (p PushDecoder) Decode(ctx context.Context, path string) EventSeq {
	return func(yield func(Event, error) bool) {
		done := false
		fail := func(err error) {
			if done {
				return
			}
			done = true
			yield(Event{}, err)
		}
		cb := callbacksFor(func(ev Event) bool {
			if done {
				return false
			}
			if err := ctx.Err(); err != nil {
				fail(err)
				return false
			}
			if !yield(ev, nil) {
				done = true
				return false
			}
			return true
		})
		cb.Error = fail
		if err := p(ctx, path, cb); err != nil {
			fail(err)
		}
	}
}
