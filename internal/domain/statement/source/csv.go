// Package source ingests statements that are already tabular, bypassing
// the heuristic adapter chain. It uses gocsv for header-name based
// unmarshaling so column order does not matter.
package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
	"github.com/tmashinini/bankconvert/internal/domain/statement/classify"
)

// csvRow is a raw CSV statement row matched by header name.
type csvRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Balance     string `csv:"balance"`
}

// ParseCSV reads a tabular statement export. Rows with an unparsable
// amount are skipped with a warning; an unreadable file is an error.
func ParseCSV(r io.Reader, currency string, toggles statement.Toggles) ([]statement.TransactionRow, []string, error) {
	var raw []csvRow
	if err := gocsv.Unmarshal(r, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse csv statement: %w", err)
	}

	rows := make([]statement.TransactionRow, 0, len(raw))
	var warnings []string
	for i, rec := range raw {
		lineNo := i + 2 // 1-indexed, after header

		amount, err := parseDecimal(rec.Amount)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("csv line %d: unparsable amount %q", lineNo, rec.Amount))
			continue
		}

		row := statement.TransactionRow{
			Date:        strings.TrimSpace(rec.Date),
			Description: strings.TrimSpace(rec.Description),
			Amount:      amount,
			Currency:    currency,
			Type:        classify.Unknown.Type,
			Method:      classify.Unknown.Method,
			PageNo:      1,
			LineNo:      lineNo,
		}
		if balance, err := parseDecimal(rec.Balance); err == nil {
			row.Balance = balance
		}
		if toggles.Categorize {
			class := classify.Default().Classify(row.Description)
			row.Type = class.Type
			row.Method = class.Method
		}
		rows = append(rows, row)
	}
	return rows, warnings, nil
}

func parseDecimal(s string) (*decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil, fmt.Errorf("empty")
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
