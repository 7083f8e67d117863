// Package classify maps transaction descriptions to a (type, method) pair
// through a flat, ordered table of substring rules. The table is matched in
// a single pass with Aho-Corasick; among the patterns found, the rule with
// the highest priority (lowest table index) wins. New bank formats extend
// the table rather than retraining anything.
package classify

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Transaction types.
const (
	TypeTransferIn      = "transfer_in"
	TypeTransferOut     = "transfer_out"
	TypeCardPOS         = "card_pos"
	TypeFuel            = "fuel"
	TypeAirtime         = "airtime"
	TypeElectricity     = "electricity"
	TypeBankCharge      = "bank_charge"
	TypeInterest        = "interest"
	TypeCardTransaction = "card_transaction"
	TypeTransfer        = "transfer"
	TypePayment         = "payment"
	TypeDeposit         = "deposit"
	TypeWithdrawal      = "withdrawal"
	TypeOther           = "other"
)

// Transaction methods.
const (
	MethodSendMoney = "send_money"
	MethodFNBApp    = "fnb_app"
	MethodInternet  = "internet"
	MethodPOS       = "pos"
	MethodFee       = "fee"
	MethodInterest  = "interest"
	MethodCard      = "card"
	MethodTransfer  = "transfer"
	MethodPayment   = "payment"
	MethodDeposit   = "deposit"
	MethodATM       = "atm"
	MethodUnknown   = "unknown"
)

// Class is the classification result for one description.
type Class struct {
	Type   string
	Method string
}

// Unknown is the fallback classification.
var Unknown = Class{Type: TypeOther, Method: MethodUnknown}

// Rule is one ordered substring rule. Prefix rules only fire when the
// pattern starts the description.
type Rule struct {
	Pattern string
	Class   Class
	Prefix  bool
}

// DefaultRules returns the rule table in priority order. Explicit phrases
// come first, generic keywords last.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "send money app dr", Class: Class{TypeTransferOut, MethodSendMoney}},
		{Pattern: "fnb app transfer from", Class: Class{TypeTransferIn, MethodFNBApp}, Prefix: true},
		{Pattern: "rtc pmt to", Class: Class{TypeTransferOut, MethodInternet}},
		{Pattern: "payment to", Class: Class{TypeTransferOut, MethodInternet}},
		{Pattern: "internet pmt", Class: Class{TypeTransferOut, MethodInternet}},
		{Pattern: "pos purchase", Class: Class{TypeCardPOS, MethodPOS}, Prefix: true},
		{Pattern: "fuel purchase", Class: Class{TypeFuel, MethodPOS}, Prefix: true},
		{Pattern: "prepaid airtime", Class: Class{TypeAirtime, MethodFNBApp}},
		{Pattern: "electricity", Class: Class{TypeElectricity, MethodFNBApp}},
		{Pattern: "debit order", Class: Class{TypeTransferOut, MethodInternet}},
		{Pattern: "service charge", Class: Class{TypeBankCharge, MethodFee}},
		{Pattern: "fee", Class: Class{TypeBankCharge, MethodFee}},
		{Pattern: "charge", Class: Class{TypeBankCharge, MethodFee}},
		{Pattern: "commission", Class: Class{TypeBankCharge, MethodFee}},
		{Pattern: "interest", Class: Class{TypeInterest, MethodInterest}},
		{Pattern: "card", Class: Class{TypeCardTransaction, MethodCard}},
		{Pattern: "transfer", Class: Class{TypeTransfer, MethodTransfer}},
		{Pattern: "payment", Class: Class{TypePayment, MethodPayment}},
		{Pattern: "deposit", Class: Class{TypeDeposit, MethodDeposit}},
		{Pattern: "withdrawal", Class: Class{TypeWithdrawal, MethodATM}},
		{Pattern: "atm", Class: Class{TypeWithdrawal, MethodATM}},
	}
}

// Classifier matches descriptions against an ordered rule table. All
// patterns are searched in one pass; rule order decides ties.
type Classifier struct {
	rules   []Rule
	matcher *ahocorasick.Matcher
}

// New builds a classifier from the given rules.
func New(rules []Rule) *Classifier {
	patterns := make([][]byte, len(rules))
	for i, r := range rules {
		patterns[i] = []byte(strings.ToLower(r.Pattern))
	}
	return &Classifier{
		rules:   rules,
		matcher: ahocorasick.NewMatcher(patterns),
	}
}

var (
	defaultOnce sync.Once
	defaultC    *Classifier
)

// Default returns the shared classifier over DefaultRules.
func Default() *Classifier {
	defaultOnce.Do(func() {
		defaultC = New(DefaultRules())
	})
	return defaultC
}

// Classify returns the first matching rule's class, or Unknown.
func (c *Classifier) Classify(description string) Class {
	s := strings.ToLower(description)
	hits := c.matcher.Match([]byte(s))
	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(c.rules) {
			continue
		}
		if c.rules[idx].Prefix && !strings.HasPrefix(s, c.rules[idx].Pattern) {
			continue
		}
		if best == -1 || idx < best {
			best = idx
		}
	}
	if best == -1 {
		return Unknown
	}
	return c.rules[best].Class
}
