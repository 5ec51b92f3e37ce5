package bintext_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/bintext"
)

// --- Helpers ---

// table returns the events of one basic table with string headers.
func table(name string, header []string, rows ...[]bintext.Value) []bintext.Event {
	evs := []bintext.Event{bintext.BeginTable(name), bintext.BeginColumns()}
	for _, h := range header {
		evs = append(evs, bintext.Header(h, bintext.StringType))
	}
	evs = append(evs, bintext.EndColumns())
	for _, row := range rows {
		evs = append(evs, bintext.BeginRow())
		for _, v := range row {
			evs = append(evs, bintext.Data(v))
		}
		evs = append(evs, bintext.EndRow())
	}
	return append(evs, bintext.EndTable())
}

func events(tables ...[]bintext.Event) bintext.EventSeq {
	var all []bintext.Event
	for _, t := range tables {
		all = append(all, t...)
	}
	return bintext.Events(all...)
}

func row(vs ...bintext.Value) []bintext.Value { return vs }

var (
	u = bintext.Uint64Value
	s = bintext.StringValue
	b = bintext.BoolValue
)

func t1() []bintext.Event {
	return table("T1", []string{"A", "B"}, row(u(5), s("x")))
}

func mustFilter(t *testing.T, include, exclude []string) bintext.Filter {
	t.Helper()
	f, err := bintext.NewFilter(include, exclude)
	require.NoError(t, err)
	return f
}

type errWriter struct{}

func (e *errWriter) Write([]byte) (int, error) {
	return 0, errWriteFailed
}

var (
	errWriteFailed = errors.New("write failed")
	errCorrupt     = errors.New("corrupt input")
)

// ============================================================
// Tests
// ============================================================

func TestRenderSingleTable(t *testing.T) {
	t.Parallel()
	out, err := bintext.Marshal(events(t1()))
	require.NoError(t, err)
	assert.Equal(t, "\"T1\"\n\"A\",\"B\"\n5,\"x\"\n", string(out))
}

func TestRenderExcludedTableIsEmpty(t *testing.T) {
	t.Parallel()
	out, err := bintext.Marshal(events(t1()), bintext.WithFilter(mustFilter(t, nil, []string{"T1"})))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRenderMultipleTables(t *testing.T) {
	t.Parallel()
	seq := events(
		t1(),
		table("Flags", []string{"On", "Count", "Label"},
			row(b(true), u(0), s("-1")),
			row(b(false), u(18446744073709551615), s(`a "b"`)),
		),
		table("Empty", []string{"Only"}),
	)
	out, err := bintext.Marshal(seq)
	require.NoError(t, err)
	want := heredoc.Doc(`
		"T1"
		"A","B"
		5,"x"

		"Flags"
		"On","Count","Label"
		TRUE,0,="-1"
		FALSE,18446744073709551615,"a ""b"""

		"Empty"
		"Only"
	`)
	assert.Equal(t, want, string(out))
}

func TestRenderSeparator(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		sep  string
		want string
	}{
		"default": {sep: ",", want: "\"T1\"\n\"A\",\"B\"\n5,\"x\"\n"},
		"tab":     {sep: "\t", want: "\"T1\"\n\"A\"\t\"B\"\n5\t\"x\"\n"},
		"multi":   {sep: " | ", want: "\"T1\"\n\"A\" | \"B\"\n5 | \"x\"\n"},
		"empty":   {sep: "", want: "\"T1\"\n\"A\"\"B\"\n5\"x\"\n"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := bintext.Marshal(events(t1()), bintext.WithSeparator(tc.sep))
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(out))
		})
	}
}

func TestRenderFilters(t *testing.T) {
	t.Parallel()
	seq := func() bintext.EventSeq {
		return events(
			table("A", []string{"x"}, row(u(1))),
			table("B", []string{"y"}, row(u(2))),
			table("C", []string{"z"}, row(u(3))),
		)
	}
	tests := map[string]struct {
		include []string
		exclude []string
		want    string
	}{
		"none": {
			want: "\"A\"\n\"x\"\n1\n\n\"B\"\n\"y\"\n2\n\n\"C\"\n\"z\"\n3\n",
		},
		"include one": {
			include: []string{"B"},
			want:    "\"B\"\n\"y\"\n2\n",
		},
		"include two": {
			include: []string{"C", "A"},
			want:    "\"A\"\n\"x\"\n1\n\n\"C\"\n\"z\"\n3\n",
		},
		"include missing": {
			include: []string{"D"},
			want:    "",
		},
		"exclude first": {
			exclude: []string{"A"},
			want:    "\"B\"\n\"y\"\n2\n\n\"C\"\n\"z\"\n3\n",
		},
		"exclude middle": {
			exclude: []string{"B"},
			want:    "\"A\"\n\"x\"\n1\n\n\"C\"\n\"z\"\n3\n",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := bintext.Marshal(seq(), bintext.WithFilter(mustFilter(t, tc.include, tc.exclude)))
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(out))
		})
	}
}

func TestRenderOnlyNames(t *testing.T) {
	t.Parallel()
	seq := events(
		t1(),
		table("T2", []string{"C"}, row(b(true))),
		table("-neg", nil),
	)
	out, err := bintext.Marshal(seq, bintext.WithOnlyNames(true))
	require.NoError(t, err)
	assert.Equal(t, "\"T1\"\n\n\"T2\"\n\n=\"-neg\"\n", string(out))
}

func TestRenderOnlyNamesWithFilter(t *testing.T) {
	t.Parallel()
	seq := events(t1(), table("T2", []string{"C"}, row(b(true))))
	out, err := bintext.Marshal(seq,
		bintext.WithOnlyNames(true),
		bintext.WithFilter(mustFilter(t, []string{"T2"}, nil)),
	)
	require.NoError(t, err)
	assert.Equal(t, "\"T2\"\n", string(out))
}

func TestRenderColumnCounterResetsPerRow(t *testing.T) {
	t.Parallel()
	// Rows of different widths: a wide row must not leave a separator in
	// front of the first value of the next row.
	seq := events(table("T", []string{"a", "b", "c"},
		row(u(1), u(2), u(3)),
		row(u(4)),
		row(),
		row(u(5), u(6)),
	))
	out, err := bintext.Marshal(seq)
	require.NoError(t, err)
	assert.Equal(t, "\"T\"\n\"a\",\"b\",\"c\"\n1,2,3\n4\n\n5,6\n", string(out))
}

func TestRenderKeyValueTable(t *testing.T) {
	t.Parallel()
	seq := bintext.Events(
		bintext.BeginKeyValueTable("Summary"),
		bintext.BeginColumns(),
		bintext.Header("ops", bintext.Uint64Type),
		bintext.Header("ok", bintext.BoolType),
		bintext.EndColumns(),
		bintext.BeginRow(),
		bintext.Data(u(42)),
		bintext.Data(b(true)),
		bintext.EndRow(),
	)
	out, err := bintext.Marshal(seq)
	require.NoError(t, err)
	assert.Equal(t, "\"Summary\"\n\"ops\",\"ok\"\n42,TRUE\n", string(out))
}

func TestRenderDecodeErrorFlushesOutput(t *testing.T) {
	t.Parallel()
	seq := func(yield func(bintext.Event, error) bool) {
		for _, ev := range []bintext.Event{
			bintext.BeginTable("T"),
			bintext.BeginColumns(),
			bintext.Header("a", bintext.StringType),
			bintext.Header("b", bintext.StringType),
		} {
			if !yield(ev, nil) {
				return
			}
		}
		if !yield(bintext.Event{}, errCorrupt) {
			return
		}
		yield(bintext.EndColumns(), nil)
	}
	out, err := bintext.Marshal(seq)
	require.ErrorIs(t, err, bintext.ErrDecode)
	require.ErrorIs(t, err, errCorrupt)
	var decErr *bintext.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "corrupt input", err.Error())
	assert.Equal(t, "\"T\"\n\"a\",\"b\"", string(out))
}

func TestRenderWriteError(t *testing.T) {
	t.Parallel()
	big := strings.Repeat("x", 10000)
	r := bintext.NewRenderer(&errWriter{})
	err := r.Render(events(table("T", []string{"a"}, row(s(big)), row(s(big)))))
	require.ErrorIs(t, err, errWriteFailed)
	assert.ErrorIs(t, r.Err(), errWriteFailed)
	assert.ErrorIs(t, r.Close(), errWriteFailed)
}

func TestRenderWriteErrorOnFlush(t *testing.T) {
	t.Parallel()
	err := bintext.Render(&errWriter{}, events(t1()))
	assert.ErrorIs(t, err, errWriteFailed)
}

func TestRendererHandlers(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := bintext.NewRenderer(&buf, bintext.WithSeparator(";"))
	assert.Equal(t, bintext.Idle, r.State())

	r.BeginTable("T", bintext.BasicTable)
	assert.Equal(t, bintext.InTable, r.State())
	r.BeginColumns()
	r.ColumnHeader("n", bintext.Uint64Type)
	r.ColumnHeader("s", bintext.StringType)
	r.ColumnHeader("b", bintext.BoolType)
	r.EndColumns()
	r.BeginRow()
	r.Uint64(7)
	r.Text("-x")
	r.Bool(false)
	r.EndRow()
	r.EndTable()
	require.NoError(t, r.Close())

	assert.Equal(t, "\"T\"\n\"n\";\"s\";\"b\"\n7;=\"-x\";FALSE\n", buf.String())
	assert.Equal(t, 1, r.Tables())
	assert.Equal(t, 1, r.Rows())
}

func TestRendererStateAfterRender(t *testing.T) {
	t.Parallel()
	r := bintext.NewRenderer(&bytes.Buffer{})
	require.NoError(t, r.Render(events(t1(), t1())))
	assert.Equal(t, bintext.Done, r.State())
	assert.Equal(t, 2, r.Tables())
	assert.Equal(t, 2, r.Rows())
}

func TestRendererSuppressedTableNotCounted(t *testing.T) {
	t.Parallel()
	r := bintext.NewRenderer(&bytes.Buffer{}, bintext.WithFilter(mustFilter(t, nil, []string{"T1"})))
	require.NoError(t, r.Render(events(t1(), table("T2", []string{"a"}, row(u(1))))))
	assert.Equal(t, 1, r.Tables())
	assert.Equal(t, 1, r.Rows())
}

func TestRendererIgnoresUnknownEvent(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := bintext.NewRenderer(&buf)
	r.Handle(bintext.Event{Kind: bintext.EventKind(99)})
	require.NoError(t, r.Flush())
	assert.Empty(t, buf.String())
}

func TestRendererCallbacks(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := bintext.NewRenderer(&buf)
	cb := r.Callbacks()
	cb.BeginBasicTable("T")
	cb.BeginColumns()
	cb.Uint64Column("n")
	cb.StringColumn("s")
	cb.BoolColumn("b")
	cb.EndColumns()
	cb.BeginRow()
	cb.Uint64(1)
	cb.String("one")
	cb.Bool(true)
	cb.EndRow()
	cb.BeginKeyValueTable("KV")
	cb.BeginColumns()
	cb.Uint64Column("k")
	cb.EndColumns()
	cb.BeginRow()
	cb.Uint64(2)
	cb.EndRow()
	require.NoError(t, r.Flush())
	assert.Equal(t, "\"T\"\n\"n\",\"s\",\"b\"\n1,\"one\",TRUE\n\n\"KV\"\n\"k\"\n2\n", buf.String())
}

func TestRendererCallbacksError(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := bintext.NewRenderer(&buf)
	cb := r.Callbacks()
	cb.BeginBasicTable("T")
	cb.BeginColumns()
	cb.StringColumn("a")
	cb.Error(errCorrupt)
	cb.StringColumn("ignored")
	cb.EndColumns()
	err := r.Close()
	require.ErrorIs(t, err, bintext.ErrDecode)
	assert.Equal(t, "\"T\"\n\"a\"", buf.String())
}

func TestRendererLogsSuppression(t *testing.T) {
	t.Parallel()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := bintext.Marshal(events(t1()),
		bintext.WithLogger(logger),
		bintext.WithFilter(mustFilter(t, []string{"other"}, nil)),
	)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "table suppressed")
	assert.Contains(t, logs.String(), "table=T1")
	assert.Contains(t, logs.String(), "render finished")
}

func TestCreate(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out.csv", []byte("stale content that is longer"), 0o644))

	r, err := bintext.Create(fs, "/out.csv")
	require.NoError(t, err)
	require.NoError(t, r.Render(events(t1())))
	require.NoError(t, r.Close())

	got, err := afero.ReadFile(fs, "/out.csv")
	require.NoError(t, err)
	assert.Equal(t, "\"T1\"\n\"A\",\"B\"\n5,\"x\"\n", string(got))
}

func TestCreateFailure(t *testing.T) {
	t.Parallel()
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	_, err := bintext.Create(fs, "/out.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open /out.csv for writing")
}

func TestConfigOptions(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		cfg     bintext.Config
		want    string
		wantErr error
	}{
		"tab separator": {
			cfg:  bintext.Config{Separator: `\t`},
			want: "\"T1\"\n\"A\"\t\"B\"\n5\t\"x\"\n",
		},
		"only names": {
			cfg:  bintext.Config{Separator: ",", OnlyNames: true},
			want: "\"T1\"\n",
		},
		"exclude": {
			cfg:  bintext.Config{Separator: ",", Exclude: []string{"T1"}},
			want: "",
		},
		"bad escape": {
			cfg:     bintext.Config{Separator: `\x`},
			wantErr: bintext.ErrInvalidEscapeSequence,
		},
		"conflicting filters": {
			cfg:     bintext.Config{Separator: ",", Include: []string{"A"}, Exclude: []string{"B"}},
			wantErr: bintext.ErrConflictingFilters,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			opts, err := tc.cfg.Options()
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			out, err := bintext.Marshal(events(t1()), opts...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(out))
		})
	}
}
