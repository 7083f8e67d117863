package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
	"github.com/tmashinini/bankconvert/internal/domain/statement/adapter"
)

type stubAdapter struct {
	name string
	out  adapter.Result
}

func (s stubAdapter) Name() string { return s.name }

func (s stubAdapter) Parse([]statement.Page, adapter.Context) adapter.Result { return s.out }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEngine_Parse(t *testing.T) {
	pages := []statement.Page{{Number: 1, Text: "irrelevant"}}
	row := statement.TransactionRow{Description: "x"}

	t.Run("first non-empty adapter wins", func(t *testing.T) {
		e := New(testLogger(), WithAdapters(
			stubAdapter{name: "first", out: adapter.Result{Rows: []statement.TransactionRow{row}}},
			stubAdapter{name: "second", out: adapter.Result{Rows: []statement.TransactionRow{row, row}}},
		))

		out := e.Parse(pages, "ZAR", statement.DefaultOptions())

		assert.Len(t, out.Rows, 1)
	})

	t.Run("rejected adapter warnings are kept by default", func(t *testing.T) {
		e := New(testLogger(), WithAdapters(
			stubAdapter{name: "first", out: adapter.Result{Warnings: []string{"first: nothing found"}}},
			stubAdapter{name: "second", out: adapter.Result{
				Rows:     []statement.TransactionRow{row},
				Warnings: []string{"second: partial"},
			}},
		))

		out := e.Parse(pages, "ZAR", statement.DefaultOptions())

		require.Len(t, out.Rows, 1)
		assert.Equal(t, []string{"first: nothing found", "second: partial"}, out.Warnings)
	})

	t.Run("rejected warnings dropped when disabled", func(t *testing.T) {
		e := New(testLogger(), WithAdapters(
			stubAdapter{name: "first", out: adapter.Result{Warnings: []string{"first: nothing found"}}},
			stubAdapter{name: "second", out: adapter.Result{
				Rows:     []statement.TransactionRow{row},
				Warnings: []string{"second: partial"},
			}},
		))

		opts := statement.DefaultOptions()
		opts.KeepRejectedWarnings = false
		out := e.Parse(pages, "ZAR", opts)

		assert.Equal(t, []string{"second: partial"}, out.Warnings)
	})

	t.Run("all adapters empty returns zero rows with warnings", func(t *testing.T) {
		e := New(testLogger(), WithAdapters(
			stubAdapter{name: "first", out: adapter.Result{Warnings: []string{"first: no anchors"}}},
			stubAdapter{name: "second", out: adapter.Result{Warnings: []string{"second: no anchors"}}},
		))

		out := e.Parse(pages, "ZAR", statement.DefaultOptions())

		assert.Empty(t, out.Rows)
		assert.Len(t, out.Warnings, 2)
	})

	t.Run("default chain prefers the fnb adapter on fnb text", func(t *testing.T) {
		fnbPages := []statement.Page{{Number: 1, Text: `
Statement Period: 01/07/2024 to 31/07/2024
14 Jul FNB App Transfer from John Doe 400.00Cr 1,654.13Cr
`}}

		out := New(testLogger()).Parse(fnbPages, "ZAR", statement.DefaultOptions())

		require.Len(t, out.Rows, 1)
		assert.Equal(t, "FNB", out.Rows[0].BankName)
		assert.Equal(t, "transfer_in", out.Rows[0].Type)
	})
}
