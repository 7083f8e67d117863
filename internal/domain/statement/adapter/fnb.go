package adapter

import (
	"fmt"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
	"github.com/tmashinini/bankconvert/internal/domain/statement/classify"
	"github.com/tmashinini/bankconvert/internal/domain/statement/scan"
)

// fnbPeelLimit bounds tail peeling for FNB lines, which can carry balance,
// amount, fee, VAT and stray reference digits.
const fnbPeelLimit = 6

// FNB parses the FNB statement export family: rows anchor on a day plus
// month abbreviation ("14 Jul" or "14Jul"), amounts carry a trailing "Cr"
// credit suffix, and fee/VAT columns collapse into the line tail.
type FNB struct {
	classifier *classify.Classifier
}

// NewFNB returns the FNB adapter with the default classification table.
func NewFNB() *FNB {
	return &FNB{classifier: classify.Default()}
}

// Name implements Adapter.
func (f *FNB) Name() string { return "fnb-pdf" }

// Parse implements Adapter.
func (f *FNB) Parse(pages []statement.Page, ctx Context) Result {
	var acc accumulator
	seenAnchor := false

	for _, page := range pages {
		lines := scan.CleanLines(page.Text)
		for i, line := range lines {
			anchor, ok := scan.FindDayMonthAnchor(line, ctx.YearHint)
			if !ok {
				acc.extend(line)
				continue
			}
			seenAnchor = true
			acc.start(f.buildRow(anchor, ctx, page.Number, i+1))
		}
		acc.flush()
	}

	var warnings []string
	if !seenAnchor {
		warnings = append(warnings, fmt.Sprintf("%s: no day-month date anchors found in document", f.Name()))
	}
	return Result{Rows: acc.rows, Warnings: warnings}
}

func (f *FNB) buildRow(anchor scan.Anchor, ctx Context, pageNo, lineNo int) statement.TransactionRow {
	desc, tokens := scan.PeelTail(anchor.After, fnbPeelLimit)
	numbers := interpretTokens(desc, tokens)

	// Keyword-anchored fee/VAT extraction runs over the unpeeled body and
	// overrides positional values.
	if ctx.Toggles.IncludeAccruedBankCharges {
		if fee := scanKeywordFee(anchor.After); fee != nil {
			numbers.fee = fee
			numbers.bankCharges = fee
		}
	} else {
		numbers.fee = nil
		numbers.bankCharges = nil
	}
	if ctx.Toggles.EmitVAT {
		if vat := scanVAT(anchor.After); vat != nil {
			numbers.vat = vat
		}
	} else {
		numbers.vat = nil
	}

	finalDesc := defaultDescription(desc, numbers)
	class := classify.Unknown
	if ctx.Toggles.Categorize {
		class = f.classifier.Classify(finalDesc)
	}

	row := statement.TransactionRow{
		Date:        anchor.ISO,
		Description: finalDesc,
		Amount:      numbers.amount,
		Balance:     numbers.balance,
		Currency:    ctx.Currency,
		Type:        class.Type,
		Method:      class.Method,
		FeeAmount:   numbers.fee,
		VATAmount:   numbers.vat,
		BankCharges: numbers.bankCharges,
		BankName:    "FNB",
		PageNo:      pageNo,
		LineNo:      lineNo,
	}
	if ctx.Toggles.KeepCardRef || ctx.Toggles.RevealCardRef {
		row.CardRef = scanCardRef(desc, ctx.Toggles.RevealCardRef)
	}
	if ctx.Toggles.ParseValueDate {
		row.ValueDate = scanValueDate(anchor.After)
	}
	return row
}
