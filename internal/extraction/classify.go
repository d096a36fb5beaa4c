package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// metadataKeywords are words that mark headers, footers, totals, tax and payment lines
var metadataKeywords = map[string]struct{}{
	"HOTEL": {}, "MOTEL": {}, "RESTAURANT": {}, "CAFE": {}, "BAR": {}, "STORE": {}, "RECEIPT": {},
	"SUBTOTAL": {}, "SUB-TOTAL": {}, "TAX": {}, "VAT": {}, "GST": {}, "HST": {}, "PST": {},
	"TOTAL": {}, "AMOUNT": {}, "BALANCE": {}, "CASH": {}, "CREDIT": {}, "CARD": {},
	"MASTERCARD": {}, "VISA": {}, "AMEX": {},
	"CHANGE": {}, "DUE": {}, "PAID": {}, "TIP": {}, "GRATUITY": {},
	"INVOICE": {}, "ORDER": {}, "TABLE": {}, "GUEST": {}, "SERVER": {}, "CLERK": {},
	"DATE": {}, "TIME": {}, "PHONE": {}, "WEBSITE": {}, "ADDRESS": {},
	"ITEM": {}, "DESCRIPTION": {}, "QTY": {}, "PRICE": {}, "SUB": {}, "TAXES": {},
	"DISCOUNT": {}, "SAVINGS": {}, "COUPON": {},
	"AUTH": {}, "SIGNATURE": {}, "PIN": {}, "VERIFIED": {}, "APPROVED": {}, "TRANSACTION": {},
	"THANK": {}, "YOU": {},
}

const (
	// Lines shorter than this that mention a keyword are treated as metadata
	minMetadataLineLength = 5
	// Lines shorter than this without a price, quantity or currency marker are noise
	minItemLineLength = 8
)

var (
	trailingPriceRe = regexp.MustCompile(`\d+\.\d+$`)
	leadingQtyRe    = regexp.MustCompile(`^\d+`)
	amountTokenRe   = regexp.MustCompile(`^\$?\d+\.\d{2}$`)
)

// Classify filters raw text lines down to those that plausibly describe a
// purchased item. The result keeps the input order.
func Classify(lines []string) []string {
	candidates := make([]string, 0, len(lines))
	for _, line := range lines {
		if isItemCandidate(line) {
			candidates = append(candidates, line)
		}
	}
	return candidates
}

func isItemCandidate(line string) bool {
	upper := strings.ToUpper(line)
	length := utf8.RuneCountInString(line)

	if containsKeyword(upper) && (onlyKeywords(upper) || length < minMetadataLineLength) {
		return false
	}

	// A price or quantity shape outweighs any keyword suspicion
	if trailingPriceRe.MatchString(line) || leadingQtyRe.MatchString(line) {
		return true
	}

	if length < minItemLineLength && !strings.Contains(line, "$") {
		return false
	}

	return true
}

func containsKeyword(upper string) bool {
	for keyword := range metadataKeywords {
		if strings.Contains(upper, keyword) {
			return true
		}
	}
	return false
}

// onlyKeywords reports whether every word of the line is a metadata keyword.
// Bare amounts ("15.00", "$15.00") are ignored so "TOTAL $15.00" still counts.
func onlyKeywords(upper string) bool {
	words := 0
	for _, token := range strings.Fields(upper) {
		if amountTokenRe.MatchString(token) {
			continue
		}
		if _, ok := metadataKeywords[token]; !ok {
			return false
		}
		words++
	}
	return words > 0
}
