package bintext

import (
	"fmt"
	"iter"
	"strconv"
)

// EventKind identifies the structural meaning of an [Event].
type EventKind int

const (
	TableBegin   EventKind = iota + 1 // a new table starts; Name and Table are set
	ColumnBegin                       // the header row starts
	ColumnHeader                      // one column name; Name and Type are set
	ColumnEnd                         // the header row ends
	RowBegin                          // a data row starts
	DataValue                         // one data value; Value is set
	RowEnd                            // a data row ends
	TableEnd                          // the current table ends
)

var eventKindNames = map[EventKind]string{
	TableBegin:   "table-begin",
	ColumnBegin:  "column-begin",
	ColumnHeader: "column-header",
	ColumnEnd:    "column-end",
	RowBegin:     "row-begin",
	DataValue:    "data",
	RowEnd:       "row-end",
	TableEnd:     "table-end",
}

// String returns the event kind name, such as "table-begin".
func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// TableKind distinguishes the table layouts a decoder can report. Both are
// rendered the same way.
type TableKind int

const (
	BasicTable    TableKind = iota // named columns followed by any number of rows
	KeyValueTable                  // keys as columns, a single row of values
)

// String returns "basic" or "keyval".
func (k TableKind) String() string {
	switch k {
	case BasicTable:
		return "basic"
	case KeyValueTable:
		return "keyval"
	default:
		return fmt.Sprintf("TableKind(%d)", int(k))
	}
}

// ValueType is the scalar type of a column or data value.
type ValueType int

const (
	Uint64Type ValueType = iota + 1
	StringType
	BoolType
)

// String returns the type name accepted by [ParseValueType].
func (t ValueType) String() string {
	switch t {
	case Uint64Type:
		return "uint64"
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// ParseValueType parses the name returned by [ValueType.String].
func ParseValueType(s string) (ValueType, error) {
	for _, t := range []ValueType{Uint64Type, StringType, BoolType} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown value type %q", s)
}

// Value is a typed scalar carried by a [DataValue] event. Only the field
// matching Type is meaningful.
type Value struct {
	Type ValueType
	Uint uint64
	Str  string
	Bool bool
}

// Uint64Value returns an unsigned integer value.
func Uint64Value(v uint64) Value { return Value{Type: Uint64Type, Uint: v} }

// StringValue returns a string value.
func StringValue(v string) Value { return Value{Type: StringType, Str: v} }

// BoolValue returns a boolean value.
func BoolValue(v bool) Value { return Value{Type: BoolType, Bool: v} }

// AppendCell appends the delimited-text form of v to dst: decimal digits for
// uint64, TRUE or FALSE for bool and a [Quote]d string otherwise.
func (v Value) AppendCell(dst []byte) []byte {
	switch v.Type {
	case Uint64Type:
		return strconv.AppendUint(dst, v.Uint, 10)
	case BoolType:
		if v.Bool {
			return append(dst, "TRUE"...)
		}
		return append(dst, "FALSE"...)
	default:
		return AppendQuote(dst, v.Str)
	}
}

// String returns the cell text of v.
func (v Value) String() string { return string(v.AppendCell(nil)) }

// Event is one structural notification from a decoder. Events are values;
// the renderer never keeps them past the call that receives them.
type Event struct {
	Kind  EventKind
	Name  string    // table name for TableBegin, column name for ColumnHeader
	Table TableKind // TableBegin only
	Type  ValueType // ColumnHeader only
	Value Value     // DataValue only
}

// BeginTable returns the start of a basic table.
func BeginTable(name string) Event {
	return Event{Kind: TableBegin, Name: name, Table: BasicTable}
}

// BeginKeyValueTable returns the start of a key/value table.
func BeginKeyValueTable(name string) Event {
	return Event{Kind: TableBegin, Name: name, Table: KeyValueTable}
}

// BeginColumns returns the start of the header row.
func BeginColumns() Event { return Event{Kind: ColumnBegin} }

// Header returns one column of the header row.
func Header(name string, typ ValueType) Event {
	return Event{Kind: ColumnHeader, Name: name, Type: typ}
}

// EndColumns returns the end of the header row.
func EndColumns() Event { return Event{Kind: ColumnEnd} }

// BeginRow returns the start of a data row.
func BeginRow() Event { return Event{Kind: RowBegin} }

// Data returns one cell of a data row.
func Data(v Value) Event { return Event{Kind: DataValue, Value: v} }

// EndRow returns the end of a data row.
func EndRow() Event { return Event{Kind: RowEnd} }

// EndTable returns the end of a table.
func EndTable() Event { return Event{Kind: TableEnd} }

// String formats e for logs and test failures.
func (e Event) String() string {
	switch e.Kind {
	case TableBegin:
		return fmt.Sprintf("%s(%s %q)", e.Kind, e.Table, e.Name)
	case ColumnHeader:
		return fmt.Sprintf("%s(%q %s)", e.Kind, e.Name, e.Type)
	case DataValue:
		return fmt.Sprintf("%s(%s %s)", e.Kind, e.Value.Type, e.Value)
	default:
		return e.Kind.String()
	}
}

// EventSeq is a lazy, non-rewindable stream of events. A non-nil error
// reports a decoder failure; consumers stop at the first one.
type EventSeq = iter.Seq2[Event, error]

// Events returns a sequence yielding evs in order.
func Events(evs ...Event) EventSeq {
	return func(yield func(Event, error) bool) {
		for _, ev := range evs {
			if !yield(ev, nil) {
				return
			}
		}
	}
}
