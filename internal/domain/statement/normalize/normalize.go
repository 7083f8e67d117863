// Package normalize assigns stable row identity and output date
// formatting to accepted rows.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// idLength is the hex prefix length of a transaction fingerprint.
const idLength = 16

// Fingerprint derives a stable transaction identifier from row content and
// provenance. Identical rows (same content, same page/line) always produce
// the same ID; this supports idempotent re-processing, not global
// uniqueness across unrelated documents.
func Fingerprint(date, description string, amount, balance *decimal.Decimal, pageNo, lineNo int) string {
	parts := []string{
		date,
		description,
		decimalKey(amount),
		decimalKey(balance),
		strconv.Itoa(pageNo),
		strconv.Itoa(lineNo),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:idLength]
}

func decimalKey(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// LayoutFromPattern translates a YYYY/MM/DD-style output pattern into a Go
// time layout. The default pattern is ISO.
func LayoutFromPattern(pattern string) string {
	if pattern == "" {
		pattern = "YYYY-MM-DD"
	}
	replacer := strings.NewReplacer("YYYY", "2006", "MM", "01", "DD", "02")
	return replacer.Replace(pattern)
}

// FormatDate reformats an ISO date through the given layout. Unparsable
// inputs pass through unchanged rather than failing.
func FormatDate(date, layout string) string {
	if date == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format(layout)
}
