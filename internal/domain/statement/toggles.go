package statement

import "fmt"

// Toggles enumerates every recognized boolean option with its default.
// Unknown keys are rejected at decode time rather than silently ignored.
type Toggles struct {
	IncludeRunningBalance     bool `json:"include_running_balance"`
	IncludeAccruedBankCharges bool `json:"include_accrued_bank_charges"`
	Categorize                bool `json:"categorize"`
	KeepCardRef               bool `json:"keep_card_ref"`
	RevealCardRef             bool `json:"reveal_card_ref"`
	EmitVAT                   bool `json:"emit_vat"`
	ParseValueDate            bool `json:"parse_value_date"`
	FailOnBalanceMismatch     bool `json:"fail_on_balance_mismatch"`
	OCR                       bool `json:"ocr"`
}

// DefaultToggles returns the documented defaults.
func DefaultToggles() Toggles {
	return Toggles{
		IncludeRunningBalance:     true,
		IncludeAccruedBankCharges: true,
		Categorize:                true,
		KeepCardRef:               true,
		RevealCardRef:             false,
		EmitVAT:                   true,
		ParseValueDate:            true,
		FailOnBalanceMismatch:     false,
		OCR:                       false,
	}
}

// ParseToggles overlays caller-supplied flags on the defaults. An
// unrecognized key is an error.
func ParseToggles(flags map[string]bool) (Toggles, error) {
	t := DefaultToggles()
	for key, value := range flags {
		switch key {
		case "include_running_balance":
			t.IncludeRunningBalance = value
		case "include_accrued_bank_charges":
			t.IncludeAccruedBankCharges = value
		case "categorize":
			t.Categorize = value
		case "keep_card_ref":
			t.KeepCardRef = value
		case "reveal_card_ref":
			t.RevealCardRef = value
		case "emit_vat":
			t.EmitVAT = value
		case "parse_value_date":
			t.ParseValueDate = value
		case "fail_on_balance_mismatch":
			t.FailOnBalanceMismatch = value
		case "ocr":
			t.OCR = value
		default:
			return t, fmt.Errorf("unknown toggle %q", key)
		}
	}
	return t, nil
}
