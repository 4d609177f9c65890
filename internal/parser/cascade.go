package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/night-audit-converter/internal/models"
)

// amountPat matches one currency field: optional dollar sign and thousands
// separators, optional leading minus or accounting parentheses.
const amountPat = `(\(?\$?-?[\d,]+(?:\.\d+)?\)?)`

// tailPat allows further delimited fields after the first amount. Running
// totals in the extra columns are intentionally ignored.
const tailPat = `\s*(?:\|.*)?$`

// Line-shape patterns for the classification cascade. Night-audit exports
// are pipe-delimited; each pattern anchors on field boundaries rather than
// column positions.
var (
	// GUEST LEDGER|$4,345.50
	ledgerPattern = regexp.MustCompile(
		`(?i)^(GUEST\s+LEDGER|CITY\s+LEDGER|ADVANCE\s+DEPOSITS?)\s*\|\s*` + amountPat + tailPat)

	// AMEX|($2,486.57)
	paymentTotalPattern = regexp.MustCompile(
		`(?i)^(VISA|MASTER\s?CARD|MASTER|DISCOVER|AMEX|AMERICAN\s+EXPRESS)\s*\|\s*` + amountPat + tailPat)

	// TOTAL ROOM REVENUE|$12,456.78
	summaryPattern = regexp.MustCompile(
		`(?i)^(TOTAL\s+ROOM\s+REVENUE|ADR|REVPAR|OCCUPANCY\s?%|DEPOSIT\s+TOTAL)\s*\|\s*` + amountPat + tailPat)

	// RC|ROOM CHRG REVENUE|50|$10,107.15|$231,259.82
	embeddedPattern = regexp.MustCompile(
		`^([A-Za-z0-9]{1,2})\|([^|]+)\|(\d+)\|\s*` + amountPat + tailPat)

	// GL ROOM TAX REV|9|CITY LODGING TAX|49|$980.63
	glclCodedPattern = regexp.MustCompile(
		`(?i)^(GL|CL)\s+([^|]+)\|([A-Za-z0-9]{1,2})\|([^|]+)\|(\d+)\|\s*` + amountPat + tailPat)

	// GL ROOM TAX REV|9CITY LODGING TAX|49|$980.63 (code glued to detail)
	glclBlobPattern = regexp.MustCompile(
		`(?i)^(GL|CL)\s+([^|]+)\|([^|]+)\|(\d+)\|\s*` + amountPat + tailPat)

	// GL ROOM TAX REV|49|$980.63
	glclSummaryPattern = regexp.MustCompile(
		`(?i)^(GL|CL)\s+([^|]+)\|(\d+)\|\s*` + amountPat + tailPat)

	// Occupied|46
	statisticalPattern = regexp.MustCompile(
		`(?i)^(OCCUPIED|NO\s+SHOW|LATE\s+CHECK-?\s?IN|EARLY\s+CHECK-?\s?OUT|TOTAL\s+ROOMS|OUT\s+OF\s+SERVICE|COMPS?|OCCUPANCY\s?%)\s*\|\s*(-?[\d,]+(?:\.\d+)?)\s*%?` + tailPat)

	// Guest 021|X3|PET CHARGE|1|$25.00
	categoryDetailPattern = regexp.MustCompile(
		`^([^|]{3,})\|([A-Za-z0-9]{1,2})\|([^|]+)\|(\d+)\|\s*` + amountPat + tailPat)

	// Room Service Food|12|$345.60
	categorySummaryPattern = regexp.MustCompile(
		`^([^|]+\s+[^|]+)\|(\d+)\|\s*` + amountPat + tailPat)
)

// extractFunc inspects one trimmed line. matched reports whether the line
// belongs to this recognizer; a recognizer may match and still return a nil
// record (business-rule exclusions), which consumes the line without output.
type extractFunc func(p *Parser, line string, lineNum int, state sectionState) (rec *models.AccountLine, matched bool)

// recognizers run in strict precedence order. The first that matches wins;
// later entries are never consulted for that line.
var recognizers = []struct {
	kind    models.LineKind
	extract extractFunc
}{
	{models.KindLedger, extractLedger},
	{models.KindPaymentTotal, extractPaymentTotal},
	{models.KindSummary, extractSummaryTotal},
	{models.KindEmbedded, extractEmbedded},
	{models.KindGLCLCoded, extractGLCLCoded},
	{models.KindGLCLSummary, extractGLCLSummary},
	{models.KindStatistical, extractStatistical},
	{models.KindCategoryDetail, extractCategoryDetail},
	{models.KindCategorySummary, extractCategorySummary},
}

// classify runs the cascade over one line and returns the single
// interpretation, or nil when no recognizer fires.
func (p *Parser) classify(line string, lineNum int, state sectionState) *models.AccountLine {
	for _, r := range recognizers {
		rec, matched := r.extract(p, line, lineNum, state)
		if !matched {
			continue
		}
		if rec != nil {
			rec.Kind = r.kind
			rec.OriginalLine = line
			rec.LineNumber = lineNum
		}
		return rec
	}
	return nil
}

func extractLedger(_ *Parser, line string, _ int, _ sectionState) (*models.AccountLine, bool) {
	m := ledgerPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	return &models.AccountLine{
		SourceCode:  normalizeLabel(m[1]),
		Description: "Ledger Balance",
		Amount:      parseAmount(m[2]),
	}, true
}

func extractPaymentTotal(_ *Parser, line string, _ int, _ sectionState) (*models.AccountLine, bool) {
	m := paymentTotalPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	// PaymentMethod stays empty here: tagging the brand total would
	// double-count it against the sum of tagged detail lines.
	return &models.AccountLine{
		SourceCode:  normalizeLabel(m[1]),
		Description: "Payment Method Total",
		Amount:      parseAmount(m[2]),
	}, true
}

func extractSummaryTotal(_ *Parser, line string, _ int, _ sectionState) (*models.AccountLine, bool) {
	m := summaryPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	return &models.AccountLine{
		SourceCode:  normalizeLabel(m[1]),
		Description: "Summary Total",
		Amount:      parseAmount(m[2]),
	}, true
}

func extractEmbedded(_ *Parser, line string, _ int, _ sectionState) (*models.AccountLine, bool) {
	m := embeddedPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	desc := strings.TrimSpace(m[2])

	// Advance-deposit refunds are excluded from downstream reporting.
	upper := strings.ToUpper(desc)
	if strings.HasPrefix(upper, "REFUND AD") || upper == "REFUND PREPAID" {
		return nil, true
	}

	rec := &models.AccountLine{
		SourceCode:  strings.ToUpper(m[1]),
		Description: desc,
		Amount:      parseAmount(m[4]),
	}
	if method, ok := detectPaymentMethod(line); ok {
		rec.PaymentMethod = method
	}
	return rec, true
}

func extractGLCLCoded(p *Parser, line string, _ int, state sectionState) (*models.AccountLine, bool) {
	if m := glclCodedPattern.FindStringSubmatch(line); m != nil {
		category := strings.TrimSpace(m[2])
		detail := strings.TrimSpace(m[4])
		return &models.AccountLine{
			SourceCode:  strings.ToUpper(m[3]),
			Description: category + " " + detail,
			Amount:      parseAmount(m[6]),
		}, true
	}

	// Delimiter-poor form: the posting code is glued to the detail text.
	m := glclBlobPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	prefix := strings.ToUpper(m[1])
	category := strings.TrimSpace(m[2])
	blob := strings.TrimSpace(m[3])
	amount := parseAmount(m[5])

	if state == sectionDetailListingSummary {
		// Summary sections carry no per-posting codes; the category text
		// itself is the source code.
		return &models.AccountLine{
			SourceCode:  prefix + " " + strings.ToUpper(category),
			Description: category + " " + blob,
			Amount:      amount,
		}, true
	}

	code, rest, ok := extractValidPostingCode(blob, p.whitelist)
	if !ok {
		// No valid posting code: consume the line without a record.
		return nil, true
	}
	desc := category
	if rest != "" {
		desc = category + " " + rest
	}
	return &models.AccountLine{
		SourceCode:  code,
		Description: desc,
		Amount:      amount,
	}, true
}

func extractGLCLSummary(_ *Parser, line string, _ int, _ sectionState) (*models.AccountLine, bool) {
	m := glclSummaryPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	category := strings.TrimSpace(m[2])
	label := strings.ToUpper(m[1]) + " " + category
	return &models.AccountLine{
		SourceCode:  label,
		Description: label,
		Amount:      parseAmount(m[4]),
	}, true
}

func extractStatistical(_ *Parser, line string, _ int, _ sectionState) (*models.AccountLine, bool) {
	m := statisticalPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	label := normalizeLabel(m[1])
	return &models.AccountLine{
		SourceCode:  label,
		Description: label,
		Amount:      parseAmount(m[2]),
	}, true
}

func extractCategoryDetail(_ *Parser, line string, _ int, _ sectionState) (*models.AccountLine, bool) {
	m := categoryDetailPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	category := strings.TrimSpace(m[1])
	detail := strings.TrimSpace(m[3])
	rec := &models.AccountLine{
		SourceCode:  strings.ToUpper(m[2]),
		Description: category + " " + detail,
		Amount:      parseAmount(m[5]),
	}
	if method, ok := detectPaymentMethod(line); ok {
		rec.PaymentMethod = method
	}
	return rec, true
}

func extractCategorySummary(_ *Parser, line string, _ int, _ sectionState) (*models.AccountLine, bool) {
	m := categorySummaryPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	category := strings.TrimSpace(m[1])
	return &models.AccountLine{
		SourceCode:  category,
		Description: category,
		Amount:      parseAmount(m[3]),
	}, true
}

// normalizeLabel collapses internal whitespace and uppercases a matched label
// so "Advance  Deposit" and "ADVANCE DEPOSIT" yield the same source code.
func normalizeLabel(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
