package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount converts a currency token like "$1,234.56" or "(1,234.56)" into
// a signed decimal. Parenthesized tokens are negated per the accounting
// convention for debits. Malformed tokens degrade to zero so a bad cell never
// aborts the surrounding parse.
func parseAmount(token string) decimal.Decimal {
	s := strings.TrimSpace(token)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return d.Neg()
	}
	return d
}
