// Package reconcile extracts statement header metadata (account number,
// period, declared balances) and validates the running balance of parsed
// rows against the declared closing balance.
package reconcile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
)

// ErrMismatch is returned when fail-on-mismatch is enabled and the running
// balance disagrees with the declared closing balance.
var ErrMismatch = errors.New("balance reconciliation mismatch")

// tolerance is the absolute comparison tolerance, one cent.
var tolerance = decimal.RequireFromString("0.01")

// Report is the per-statement reconciliation metadata. Opening and closing
// balances are nil when the header carried no recognizable labels.
type Report struct {
	AccountNumber  string           `json:"account_number"`
	PeriodStart    string           `json:"period_start"`
	PeriodEnd      string           `json:"period_end"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
	ClosingBalance *decimal.Decimal `json:"closing_balance"`
	Reconciled     bool             `json:"reconciled"`
}

// HasBalances reports whether both declared balances were found.
func (r *Report) HasBalances() bool {
	return r != nil && r.OpeningBalance != nil && r.ClosingBalance != nil
}

var (
	accountRe = regexp.MustCompile(`(?i)Account\s+Number\s*:?\s*(\d+)`)
	periodRe  = regexp.MustCompile(`(?i)Statement\s+Period\s*:?\s*(\d{2}/\d{2}/\d{4})\s*to\s*(\d{2}/\d{2}/\d{4})`)
	openingRe = regexp.MustCompile(`(?i)Opening\s+Balance\s*:?\s*R?\s*([\d,]+\.?\d*)`)
	closingRe = regexp.MustCompile(`(?i)Closing\s+Balance\s*:?\s*R?\s*([\d,]+\.?\d*)`)
	amountRe  = regexp.MustCompile(`([\d,]+\.\d{2})`)
)

// ExtractHeader scans the document text for header metadata. When the
// strict balance labels are absent (extraction noise, odd spacing), a
// fuzzy line scan recovers them.
func ExtractHeader(text string) *Report {
	report := &Report{}
	if m := accountRe.FindStringSubmatch(text); m != nil {
		report.AccountNumber = m[1]
	}
	if m := periodRe.FindStringSubmatch(text); m != nil {
		report.PeriodStart = slashToISO(m[1])
		report.PeriodEnd = slashToISO(m[2])
	}
	if m := openingRe.FindStringSubmatch(text); m != nil {
		report.OpeningBalance = parseHeaderAmount(m[1])
	}
	if m := closingRe.FindStringSubmatch(text); m != nil {
		report.ClosingBalance = parseHeaderAmount(m[1])
	}

	if report.OpeningBalance == nil || report.ClosingBalance == nil {
		fuzzyFillBalances(text, report)
	}
	return report
}

// fuzzyFillBalances tolerates mangled labels like "Openng Balnce" by fuzzy
// matching each line against the expected label and then lifting the first
// decimal amount off that line.
func fuzzyFillBalances(text string, report *Report) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label := line
		if idx := amountRe.FindStringIndex(line); idx != nil {
			label = strings.TrimSpace(line[:idx[0]])
		}
		if len(label) < 10 || len(label) > 24 {
			continue
		}
		if report.OpeningBalance == nil && fuzzy.MatchNormalizedFold(label, "opening balance") {
			report.OpeningBalance = firstAmount(line)
		}
		if report.ClosingBalance == nil && fuzzy.MatchNormalizedFold(label, "closing balance") {
			report.ClosingBalance = firstAmount(line)
		}
	}
}

func firstAmount(line string) *decimal.Decimal {
	m := amountRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return parseHeaderAmount(m[1])
}

func parseHeaderAmount(s string) *decimal.Decimal {
	value, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil
	}
	return &value
}

func slashToISO(s string) string {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return s
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

// Run accumulates the rows' amounts from the opening balance and compares
// the total to the declared closing balance within one cent. With
// failOnMismatch it returns ErrMismatch; otherwise a descriptive warning
// is returned and the report's Reconciled flag records the outcome.
func Run(report *Report, rows []statement.TransactionRow, currency string, failOnMismatch bool) ([]string, error) {
	if !report.HasBalances() {
		return nil, nil
	}

	running := *report.OpeningBalance
	for _, row := range rows {
		if row.Amount != nil {
			running = running.Add(*row.Amount)
		}
	}

	diff := running.Sub(*report.ClosingBalance).Abs()
	report.Reconciled = diff.LessThan(tolerance)
	if report.Reconciled {
		return nil, nil
	}

	expected := display(*report.ClosingBalance, currency)
	calculated := display(running, currency)
	if failOnMismatch {
		return nil, fmt.Errorf("%w: expected %s, calculated %s", ErrMismatch, expected, calculated)
	}
	return []string{
		fmt.Sprintf("balance reconciliation warning: expected %s, calculated %s", expected, calculated),
	}, nil
}

// FillRunningBalance carries a running balance onto rows that did not peel
// one of their own, starting from the declared opening balance.
func FillRunningBalance(rows []statement.TransactionRow, opening decimal.Decimal) {
	running := opening
	for i := range rows {
		if rows[i].Amount != nil {
			running = running.Add(*rows[i].Amount)
		}
		if rows[i].Balance == nil {
			balance := running
			rows[i].Balance = &balance
		}
	}
}

// display formats an amount in the statement currency for warnings and
// errors.
func display(value decimal.Decimal, currency string) string {
	if money.GetCurrency(currency) == nil {
		return value.StringFixed(2)
	}
	cents := value.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return money.New(cents, currency).Display()
}
