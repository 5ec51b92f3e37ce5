// Package bintext renders a stream of table events as delimited text.
//
// A decoder reports the tables of a structured data file as a sequence of
// [Event] values: a table name, a header row of typed column names, then
// data rows of uint64, string and bool values. The [Renderer] consumes the
// sequence in a single forward pass and writes one block per table:
//
//	"T1"
//	"A","B"
//	5,"x"
//
// Blocks are separated by a blank line. Strings are always quoted for safe
// spreadsheet import; see [Quote].
//
// # Rendering
//
// [Render] and [Marshal] consume an [EventSeq]. A [Renderer] can also be
// driven one event at a time with [Renderer.Handle], or through the
// [Callbacks] returned by [Renderer.Callbacks] for callback-style decoders.
//
//	err := bintext.Render(os.Stdout, dec.Decode(ctx, path),
//		bintext.WithSeparator("\t"),
//		bintext.WithFilter(filter),
//	)
//
// Options:
//
//   - [WithSeparator] — column separator (default comma)
//   - [WithFilter] — include or exclude tables by name, see [NewFilter]
//   - [WithOnlyNames] — list table names only
//   - [WithLogger] — debug diagnostics
//
// [Config] converts command-line style settings, including a separator
// with backslash escapes (see [ExpandEscapes]), into options.
//
// # Decoders
//
// A [Decoder] turns a file into an [EventSeq]. [PushDecoder] adapts
// decoders that report events through a [Callbacks] table, and
// [YAMLDecoder] reads textual table dumps.
//
// # Errors
//
//   - [ErrInvalidEscapeSequence] — bad escape in a separator ([*EscapeError])
//   - [ErrConflictingFilters] — both include and exclude given
//   - [ErrDecode] — the decoder failed mid-stream ([*DecodeError]); output
//     written before the failure is flushed
package bintext
