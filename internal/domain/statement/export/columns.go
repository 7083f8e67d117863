// Package export projects transaction rows onto an ordered column layout
// and serializes them as CSV or XLSX.
package export

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
)

// DefaultColumns is the full 20-column superset used when the caller does
// not supply an order.
var DefaultColumns = []string{
	"date", "value_date", "description", "amount", "balance", "currency",
	"type", "method", "merchant", "reference", "card_ref",
	"fee_amount", "vat_amount", "bank_name", "account_number",
	"statement_id", "transaction_id", "page_no", "line_no", "source_file",
}

// Columns returns requested when non-empty, else DefaultColumns.
func Columns(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return DefaultColumns
}

// FieldValue serializes one named field of a row. Absent fields and nil
// numerics serialize to the empty string, never to zero.
func FieldValue(row statement.TransactionRow, column string) string {
	switch column {
	case "date":
		return row.Date
	case "value_date":
		return row.ValueDate
	case "description":
		return row.Description
	case "amount":
		return decimalString(row.Amount)
	case "balance":
		return decimalString(row.Balance)
	case "currency":
		return row.Currency
	case "type":
		return row.Type
	case "method":
		return row.Method
	case "merchant":
		return row.Merchant
	case "reference":
		return row.Reference
	case "card_ref":
		return row.CardRef
	case "fee_amount":
		return decimalString(row.FeeAmount)
	case "vat_amount":
		return decimalString(row.VATAmount)
	case "bank_charges":
		return decimalString(row.BankCharges)
	case "bank_name":
		return row.BankName
	case "account_number":
		return row.AccountNumber
	case "statement_id":
		return row.StatementID
	case "transaction_id":
		return row.TransactionID
	case "page_no":
		return fmt.Sprintf("%d", row.PageNo)
	case "line_no":
		return fmt.Sprintf("%d", row.LineNo)
	case "source_file":
		return row.SourceFile
	default:
		return ""
	}
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
