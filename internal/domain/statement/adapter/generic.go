package adapter

import (
	"fmt"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
	"github.com/tmashinini/bankconvert/internal/domain/statement/scan"
)

// genericPeelLimit bounds tail peeling for unknown table layouts.
const genericPeelLimit = 4

// Generic is the deliberately weaker fallback for unknown tabular formats.
// It anchors on ISO, slash or dash dates (or day + month abbreviation),
// honors CR/DR suffix markers, and performs no classification or
// merchant/card extraction.
type Generic struct{}

// NewGeneric returns the generic table adapter.
func NewGeneric() *Generic { return &Generic{} }

// Name implements Adapter.
func (g *Generic) Name() string { return "generic-table" }

// Parse implements Adapter.
func (g *Generic) Parse(pages []statement.Page, ctx Context) Result {
	var acc accumulator
	seenAnchor := false

	for _, page := range pages {
		lines := scan.CleanLines(page.Text)
		for i, line := range lines {
			anchor, ok := scan.FindAnyDateAnchor(line, ctx.YearHint)
			if !ok {
				acc.extend(line)
				continue
			}
			seenAnchor = true

			desc, tokens := scan.PeelTail(anchor.After, genericPeelLimit)
			numbers := interpretTokens(desc, tokens)

			acc.start(statement.TransactionRow{
				Date:        anchor.ISO,
				Description: defaultDescription(desc, numbers),
				Amount:      numbers.amount,
				Balance:     numbers.balance,
				Currency:    ctx.Currency,
				Type:        "other",
				Method:      "unknown",
				FeeAmount:   numbers.fee,
				VATAmount:   numbers.vat,
				BankCharges: numbers.bankCharges,
				PageNo:      page.Number,
				LineNo:      i + 1,
			})
		}
		acc.flush()
	}

	var warnings []string
	if !seenAnchor {
		warnings = append(warnings, fmt.Sprintf("%s: no date anchors found in document", g.Name()))
	}
	return Result{Rows: acc.rows, Warnings: warnings}
}
