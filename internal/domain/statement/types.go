// Package statement holds the shared data model for the bank statement
// extraction engine: pages of extracted text in, normalized transaction
// rows out. Everything here is created per request and discarded with it.
package statement

import (
	"github.com/shopspring/decimal"
)

// Page is one page of text recovered from an uploaded document.
// Text keeps whatever layout whitespace the extractor preserved; the
// adapters clean it line by line.
type Page struct {
	Number int
	Text   string
}

// TransactionRow is one detected transaction. Amount follows a fixed sign
// convention: credit-marked tokens are positive, unmarked or debit-marked
// tokens negative. Nil decimals mean "not present on the line", never zero.
type TransactionRow struct {
	Date        string `json:"date"`
	ValueDate   string `json:"value_date"`
	Description string `json:"description"`

	Amount  *decimal.Decimal `json:"amount"`
	Balance *decimal.Decimal `json:"balance"`

	Currency string `json:"currency"`
	Type     string `json:"type"`
	Method   string `json:"method"`

	Merchant  string `json:"merchant"`
	Reference string `json:"reference"`
	CardRef   string `json:"card_ref"`

	FeeAmount   *decimal.Decimal `json:"fee_amount"`
	VATAmount   *decimal.Decimal `json:"vat_amount"`
	BankCharges *decimal.Decimal `json:"bank_charges"`

	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	StatementID   string `json:"statement_id"`
	TransactionID string `json:"transaction_id"`

	// Provenance for debugging and identity.
	PageNo     int    `json:"page_no"`
	LineNo     int    `json:"line_no"`
	SourceFile string `json:"source_file"`
}

// Options is the per-request options bag accepted by preview and convert.
type Options struct {
	// DateFormat is an output date pattern using YYYY/MM/DD tokens,
	// e.g. "DD/MM/YYYY". Empty means ISO "YYYY-MM-DD".
	DateFormat string

	// Columns overrides the exported column order. Empty means the
	// default 20-column superset.
	Columns []string

	// Format selects the convert serialization: "csv" (default) or "xlsx".
	Format string

	// KeepRejectedWarnings controls whether warnings from adapters whose
	// rows were discarded by the chain are retained in the result.
	KeepRejectedWarnings bool

	Toggles Toggles
}

// DefaultOptions returns the options used when the caller supplies nothing.
func DefaultOptions() Options {
	return Options{
		DateFormat:           "YYYY-MM-DD",
		Format:               "csv",
		KeepRejectedWarnings: true,
		Toggles:              DefaultToggles(),
	}
}
