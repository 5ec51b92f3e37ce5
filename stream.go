package bintext

import (
	"context"
	"io"
)

// RenderChan renders events received from ch until it is closed or ctx is
// done. It is a thin wrapper around [Render]; cancellation is reported as a
// decoder error so the output is flushed the same way.
func RenderChan(ctx context.Context, w io.Writer, ch <-chan Event, opts ...Option) error {
	return Render(w, chanToSeq(ctx, ch), opts...)
}

func chanToSeq(ctx context.Context, ch <-chan Event) EventSeq {
	return func(yield func(Event, error) bool) {
		for {
			select {
			case <-ctx.Done():
				yield(Event{}, ctx.Err())
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if !yield(ev, nil) {
					return
				}
			}
		}
	}
}

// DecodeTo decodes path with d and renders the events to w.
func DecodeTo(ctx context.Context, w io.Writer, d Decoder, path string, opts ...Option) error {
	return Render(w, d.Decode(ctx, path), opts...)
}
