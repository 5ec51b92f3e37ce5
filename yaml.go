package bintext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// YAMLDecoder decodes table dumps written as a stream of YAML documents,
// one table per document:
//
//	table: T1
//	kind: basic        # or keyval; default basic
//	columns:
//	  - {name: A, type: string}
//	  - {name: B, type: uint64}
//	rows:
//	  - [x, 5]
//
// Column types are uint64, string and bool. A keyval table has exactly one
// row. Tables are decoded one document at a time, so a malformed row is
// reported after the events of the rows before it.
type YAMLDecoder struct {
	Fs afero.Fs // default: the OS filesystem
}

// Decode opens path on d.Fs and streams its tables through [DecodeYAML].
func (d YAMLDecoder) Decode(ctx context.Context, path string) EventSeq {
	return func(yield func(Event, error) bool) {
		fs := d.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		f, err := fs.Open(path)
		if err != nil {
			yield(Event{}, fmt.Errorf("failed to open %s: %w", path, err))
			return
		}
		defer f.Close()
		for ev, err := range DecodeYAML(ctx, f) {
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

type yamlTable struct {
	Table   string        `yaml:"table"`
	Kind    string        `yaml:"kind"`
	Columns []yamlColumn  `yaml:"columns"`
	Rows    [][]yaml.Node `yaml:"rows"`
}

type yamlColumn struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

func (t *yamlTable) empty() bool {
	return t.Table == "" && t.Kind == "" && len(t.Columns) == 0 && len(t.Rows) == 0
}

// DecodeYAML streams the events of the YAML table dump read from r.
func DecodeYAML(ctx context.Context, r io.Reader) EventSeq {
	return func(yield func(Event, error) bool) {
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		for n := 1; ; n++ {
			if err := ctx.Err(); err != nil {
				yield(Event{}, err)
				return
			}
			var t yamlTable
			if err := dec.Decode(&t); err != nil {
				if !errors.Is(err, io.EOF) {
					yield(Event{}, fmt.Errorf("document %d: %w", n, oneLine(err)))
				}
				return
			}
			if t.empty() {
				continue
			}
			if err := t.emit(func(ev Event) bool { return yield(ev, nil) }); err != nil {
				if !errors.Is(err, errStopped) {
					yield(Event{}, fmt.Errorf("document %d: %w", n, err))
				}
				return
			}
		}
	}
}

var errStopped = errors.New("consumer stopped")

func (t *yamlTable) emit(send func(Event) bool) error {
	if t.Table == "" {
		return errors.New("missing table name")
	}
	begin := BeginTable(t.Table)
	switch t.Kind {
	case "", "basic":
	case "keyval":
		begin = BeginKeyValueTable(t.Table)
		if len(t.Rows) != 1 {
			return fmt.Errorf("keyval table %q has %d rows, want 1", t.Table, len(t.Rows))
		}
	default:
		return fmt.Errorf("table %q: unknown kind %q", t.Table, t.Kind)
	}
	types := make([]ValueType, len(t.Columns))
	for i, c := range t.Columns {
		typ, err := ParseValueType(c.Type)
		if err != nil {
			return fmt.Errorf("table %q column %q: %w", t.Table, c.Name, err)
		}
		types[i] = typ
	}

	if !send(begin) || !send(BeginColumns()) {
		return errStopped
	}
	for i, c := range t.Columns {
		if !send(Header(c.Name, types[i])) {
			return errStopped
		}
	}
	if !send(EndColumns()) {
		return errStopped
	}
	for i, row := range t.Rows {
		if len(row) != len(types) {
			return fmt.Errorf("table %q row %d: got %d values, want %d", t.Table, i+1, len(row), len(types))
		}
		if !send(BeginRow()) {
			return errStopped
		}
		for j := range row {
			v, err := nodeValue(&row[j], types[j])
			if err != nil {
				return fmt.Errorf("table %q row %d column %q: %w", t.Table, i+1, t.Columns[j].Name, err)
			}
			if !send(Data(v)) {
				return errStopped
			}
		}
		if !send(EndRow()) {
			return errStopped
		}
	}
	if !send(EndTable()) {
		return errStopped
	}
	return nil
}

func nodeValue(n *yaml.Node, typ ValueType) (Value, error) {
	if n.Kind != yaml.ScalarNode {
		return Value{}, fmt.Errorf("line %d: expected a scalar %s", n.Line, typ)
	}
	switch typ {
	case Uint64Type:
		var u uint64
		if err := n.Decode(&u); err != nil {
			return Value{}, oneLine(err)
		}
		return Uint64Value(u), nil
	case BoolType:
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, oneLine(err)
		}
		return BoolValue(b), nil
	default:
		return StringValue(n.Value), nil
	}
}

// oneLine flattens a yaml.v3 type error, whose message lists one problem
// per line, into a single line.
func oneLine(err error) error {
	var te *yaml.TypeError
	if !errors.As(err, &te) {
		return err
	}
	return errors.New(strings.Join(te.Errors, "; "))
}
