package parser

import "regexp"

// Card brand tokens recognized on detail lines. Matching is word-boundary
// anchored so brand names embedded inside unrelated words do not fire.
// Priority is fixed: VISA, then MASTER, then DISCOVER, then AMEX; the first
// match wins and a line carries at most one payment method.
var paymentMethodPatterns = []struct {
	method  string
	pattern *regexp.Regexp
}{
	{"VISA", regexp.MustCompile(`(?i)\bVISA\b`)},
	{"MASTER", regexp.MustCompile(`(?i)\bMASTER(?:\s?CARD)?\b`)},
	{"DISCOVER", regexp.MustCompile(`(?i)\bDISCOVER\b`)},
	{"AMEX", regexp.MustCompile(`(?i)\bAMEX\b`)},
}

// detectPaymentMethod scans a raw line for a card brand token and returns the
// canonical brand name.
func detectPaymentMethod(line string) (string, bool) {
	for _, pm := range paymentMethodPatterns {
		if pm.pattern.MatchString(line) {
			return pm.method, true
		}
	}
	return "", false
}
