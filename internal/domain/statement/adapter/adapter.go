// Package adapter contains the competing heuristic format strategies that
// turn pages of statement text into candidate transaction rows. Each
// adapter is stateless: a pure function over (pages, context) with no
// shared mutable state between invocations.
package adapter

import (
	"strings"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
)

// Context carries per-document hints into an adapter attempt.
type Context struct {
	// YearHint resolves day-month anchors that carry no year.
	YearHint int
	// Currency is the default currency code for rows.
	Currency string
	Toggles  statement.Toggles
}

// Result is one adapter attempt's output. Zero rows is a legitimate
// outcome, not an error.
type Result struct {
	Rows     []statement.TransactionRow
	Warnings []string
}

// Adapter is a self-contained heuristic strategy for one statement format
// family.
type Adapter interface {
	Name() string
	Parse(pages []statement.Page, ctx Context) Result
}

// accumulator folds lines into rows: a date anchor finalizes the pending
// row and starts a new one, anchorless lines extend the pending row's
// description. Rows never span a page boundary, so flush is called at the
// end of every page.
type accumulator struct {
	rows []statement.TransactionRow
	curr *statement.TransactionRow
}

func (a *accumulator) start(row statement.TransactionRow) {
	a.flush()
	a.curr = &row
}

func (a *accumulator) extend(line string) {
	if a.curr == nil {
		return
	}
	a.curr.Description = strings.TrimSpace(a.curr.Description + " " + line)
}

func (a *accumulator) flush() {
	if a.curr != nil {
		a.rows = append(a.rows, *a.curr)
		a.curr = nil
	}
}
