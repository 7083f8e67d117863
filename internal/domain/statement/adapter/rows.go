package adapter

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tmashinini/bankconvert/internal/domain/statement/scan"
)

// BankChargeLabel is the default description for fee-only rows, which in
// tabular exports often collapse to "date + single number + balance".
const BankChargeLabel = "Bank Charge"

// rowNumbers is the positional interpretation of a peeled token list,
// rightmost first: token 0 = balance, token 1 = amount, token 2 = fee,
// token 3 = VAT. Further tokens are ignored.
type rowNumbers struct {
	amount      *decimal.Decimal
	balance     *decimal.Decimal
	fee         *decimal.Decimal
	vat         *decimal.Decimal
	bankCharges *decimal.Decimal
	feeOnly     bool
}

// interpretTokens applies the sign convention (credit positive, unmarked or
// debit negative) and the fee-only rules: a single peeled token, or a
// balance plus one unmarked token with no description left, is a fee line.
func interpretTokens(desc string, tokens []scan.Token) rowNumbers {
	var n rowNumbers
	switch {
	case len(tokens) == 0:
		return n
	case len(tokens) == 1:
		fee := tokens[0].Value.Abs()
		amount := fee.Neg()
		n.amount = &amount
		n.fee = &fee
		n.bankCharges = &fee
		n.feeOnly = true
		return n
	}

	balance := tokens[0].Value
	if tokens[0].Debit() {
		balance = balance.Abs().Neg()
	}
	n.balance = &balance

	amountTok := tokens[1]
	amount := amountTok.Value.Abs()
	if !amountTok.Credit() {
		amount = amount.Neg()
	}

	if len(tokens) == 2 && desc == "" && amountTok.Tag == "" {
		fee := amountTok.Value.Abs()
		n.fee = &fee
		n.bankCharges = &fee
		n.feeOnly = true
	}
	n.amount = &amount

	if len(tokens) >= 3 {
		fee := tokens[2].Value.Abs()
		n.fee = &fee
		n.bankCharges = &fee
	}
	if len(tokens) >= 4 {
		vat := tokens[3].Value.Abs()
		n.vat = &vat
	}
	return n
}

var (
	cardRefRe = regexp.MustCompile(`[0-9]{4}\*?[0-9*]{2,8}`)

	// Keyword-anchored amount patterns applied to the unpeeled body text.
	// Ordered; the last successful match wins over any peeled fee value.
	feePatternRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)fee\s*:?\s*R?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)charge\s*:?\s*R?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)commission\s*:?\s*R?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)service\s*charge\s*:?\s*R?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)bank\s*charge\s*:?\s*R?\s*([\d,]+\.?\d*)`),
	}
	vatPatternRe   = regexp.MustCompile(`(?i)vat\s*:?\s*R?\s*([\d,]+\.?\d*)`)
	valueDateRe    = regexp.MustCompile(`(?i)value\s*date\s*:?\s*(\d{1,2})/(\d{1,2})/(\d{4})`)
	commaStripRepl = strings.NewReplacer(",", "")
)

// scanKeywordFee runs the fee patterns over the unpeeled body. Returns nil
// when no pattern matches a positive amount.
func scanKeywordFee(body string) *decimal.Decimal {
	var found *decimal.Decimal
	for _, re := range feePatternRes {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		value, err := decimal.NewFromString(commaStripRepl.Replace(m[1]))
		if err != nil || !value.IsPositive() {
			continue
		}
		found = &value
	}
	return found
}

func scanVAT(body string) *decimal.Decimal {
	m := vatPatternRe.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	value, err := decimal.NewFromString(commaStripRepl.Replace(m[1]))
	if err != nil || !value.IsPositive() {
		return nil
	}
	return &value
}

// scanValueDate extracts an embedded "value date: DD/MM/YYYY" and returns
// it as ISO, or "".
func scanValueDate(body string) string {
	m := valueDateRe.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return m[3] + "-" + pad2(m[2]) + "-" + pad2(m[1])
}

// scanCardRef finds a card reference digit run. Unless reveal is set, the
// middle digits are masked.
func scanCardRef(desc string, reveal bool) string {
	ref := cardRefRe.FindString(desc)
	if ref == "" || reveal {
		return ref
	}
	return maskCardRef(ref)
}

func maskCardRef(ref string) string {
	runes := []rune(ref)
	for i := 4; i < len(runes)-2; i++ {
		runes[i] = '*'
	}
	return string(runes)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func defaultDescription(desc string, n rowNumbers) string {
	if desc == "" && n.feeOnly {
		return BankChargeLabel
	}
	return desc
}
