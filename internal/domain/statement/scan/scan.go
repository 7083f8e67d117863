// Package scan implements line tokenization for statement text: locating
// date anchors inside noisy lines and peeling trailing numeric tokens off
// the right end to recover balance, amount, fee and VAT positionally.
package scan

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Token is one peeled trailing numeric token. Tag is "cr", "dr" or ""
// depending on the credit/debit suffix found after the number.
type Token struct {
	Value decimal.Decimal
	Tag   string
}

// Credit reports whether the token carried a credit suffix.
func (t Token) Credit() bool { return t.Tag == "cr" }

// Debit reports whether the token carried a debit suffix.
func (t Token) Debit() bool { return t.Tag == "dr" }

// Anchor is a recognized date-like token inside a line. ISO may be empty
// when the digits do not form a real calendar date; the anchor still marks
// the start of a transaction and After is the row body.
type Anchor struct {
	ISO   string
	Raw   string
	After string
}

var (
	// "DD Mon" anywhere in the line, spaced or not (14 Jul, 14Jul).
	dayMonthRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`)

	isoDateRe   = regexp.MustCompile(`\b(\d{4})[-/](\d{2})[-/](\d{2})\b`)
	dmyDateRe   = regexp.MustCompile(`\b(\d{2})[-/](\d{2})[-/](\d{4})\b`)
	yearHintRe  = regexp.MustCompile(`\b(20\d{2})\b`)
	multiSpace  = regexp.MustCompile(`\s{2,}`)
	numTailRe   = regexp.MustCompile(`(?i)\s*([()-]?\d{1,3}(?:,\d{3})*|\d+)(?:\.(\d{2}))?\s*(CR|DR)?\s*$`)
	parenNegRe  = regexp.MustCompile(`^\(.*\)$`)
	stripJunkRe = regexp.MustCompile(`[(),\s]`)
)

// CleanLines splits page text into trimmed, non-empty lines with internal
// whitespace collapsed and non-breaking spaces normalized.
func CleanLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		line = strings.ReplaceAll(line, "\u00a0", " ")
		line = multiSpace.ReplaceAllString(line, " ")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// YearHint returns the first plausible statement year found in the text,
// falling back to the current year. Day-month anchors carry no year of
// their own.
func YearHint(text string) int {
	if m := yearHintRe.FindStringSubmatch(text); m != nil {
		year, err := strconv.Atoi(m[1])
		if err == nil {
			return year
		}
	}
	return time.Now().Year()
}

// FindDayMonthAnchor locates a "DD Mon" token anywhere in the line.
func FindDayMonthAnchor(line string, yearHint int) (Anchor, bool) {
	loc := dayMonthRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return Anchor{}, false
	}
	day := line[loc[2]:loc[3]]
	mon := line[loc[4]:loc[5]]
	return Anchor{
		ISO:   dayMonthISO(day, mon, yearHint),
		Raw:   line[loc[0]:loc[1]],
		After: strings.TrimSpace(line[loc[1]:]),
	}, true
}

// FindAnyDateAnchor locates the first of several numeric date patterns:
// ISO (YYYY-MM-DD), day-first (DD/MM/YYYY), or day + month abbreviation.
func FindAnyDateAnchor(line string, yearHint int) (Anchor, bool) {
	if loc := isoDateRe.FindStringSubmatchIndex(line); loc != nil {
		raw := line[loc[0]:loc[1]]
		iso := validISO(line[loc[2]:loc[3]] + "-" + line[loc[4]:loc[5]] + "-" + line[loc[6]:loc[7]])
		return Anchor{ISO: iso, Raw: raw, After: strings.TrimSpace(line[loc[1]:])}, true
	}
	if loc := dmyDateRe.FindStringSubmatchIndex(line); loc != nil {
		raw := line[loc[0]:loc[1]]
		iso := validISO(line[loc[6]:loc[7]] + "-" + line[loc[4]:loc[5]] + "-" + line[loc[2]:loc[3]])
		return Anchor{ISO: iso, Raw: raw, After: strings.TrimSpace(line[loc[1]:])}, true
	}
	return FindDayMonthAnchor(line, yearHint)
}

// PeelTail repeatedly strips a trailing numeric token from the right end of
// the line, at most max times. Tokens are returned rightmost-first; the
// remaining text is the description. A matched token whose digits fail to
// parse is dropped and peeling stops.
func PeelTail(line string, max int) (string, []Token) {
	rest := strings.TrimRight(line, " \t")
	tokens := make([]Token, 0, max)
	for i := 0; i < max; i++ {
		loc := numTailRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		whole := rest[loc[2]:loc[3]]
		cents := ""
		if loc[4] >= 0 {
			cents = rest[loc[4]:loc[5]]
		}
		tag := ""
		if loc[6] >= 0 {
			tag = strings.ToLower(rest[loc[6]:loc[7]])
		}
		value, ok := parseNumeric(whole, cents)
		if !ok {
			break
		}
		tokens = append(tokens, Token{Value: value, Tag: tag})
		rest = strings.TrimRight(rest[:loc[0]], " \t")
	}
	return strings.TrimSpace(rest), tokens
}

// parseNumeric normalizes a peeled number: thousands separators removed,
// parenthesized values negative.
func parseNumeric(whole, cents string) (decimal.Decimal, bool) {
	neg := parenNegRe.MatchString(whole)
	base := stripJunkRe.ReplaceAllString(whole, "")
	if cents != "" {
		base += "." + cents
	}
	value, err := decimal.NewFromString(base)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if neg {
		value = value.Abs().Neg()
	}
	return value, true
}

func dayMonthISO(day, mon string, year int) string {
	mon = strings.ToUpper(mon[:1]) + strings.ToLower(mon[1:])
	t, err := time.Parse("2 Jan 2006", day+" "+mon+" "+strconv.Itoa(year))
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func validISO(s string) string {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ""
	}
	return s
}
