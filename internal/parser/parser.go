// Package parser converts extracted night-audit report text into typed
// account lines. The whole parse is a pure computation over an in-memory
// string: no I/O, no shared mutable state, and no errors surfaced for
// malformed input — bad lines are skipped and bad amounts degrade to zero.
package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/night-audit-converter/internal/models"
)

// Options configures a Parser. The zero value is usable; see DefaultOptions.
type Options struct {
	// CombinePaymentMethods enables ConsolidatedAccountLines to replace
	// configured payment-method detail lines with one combined line per group.
	CombinePaymentMethods bool

	// PaymentMethodGroups maps a group name to the payment methods it covers,
	// e.g. {"Credit Cards": ["VISA", "MASTER", "DISCOVER", "AMEX"]}.
	PaymentMethodGroups map[string][]string

	// MinimumAmount drops records whose absolute amount falls below it.
	// Statistical lines are exempt — they carry counts, not currency.
	MinimumAmount decimal.Decimal

	// IncludeZeroAmounts disables the minimum-amount filter entirely.
	IncludeZeroAmounts bool

	// ValidSourceCodes is the posting-code whitelist used to split
	// delimiter-poor GL/CL lines. Membership is case-insensitive; codes are
	// at most 8 characters. Empty means no whitelist (positional fallback).
	ValidSourceCodes []string
}

// DefaultOptions returns the standard configuration: a one-cent minimum
// amount, zero amounts excluded, no payment-method grouping, no whitelist.
func DefaultOptions() Options {
	return Options{
		MinimumAmount: decimal.NewFromFloat(0.01),
	}
}

// Parser classifies night-audit report text into account lines. Instances
// hold only immutable configuration and are safe for concurrent use across
// separate inputs.
type Parser struct {
	opts      Options
	whitelist map[string]struct{}
}

// New creates a Parser. A zero MinimumAmount falls back to the 0.01 default.
func New(opts Options) *Parser {
	if opts.MinimumAmount.IsZero() {
		opts.MinimumAmount = decimal.NewFromFloat(0.01)
	}
	var whitelist map[string]struct{}
	if len(opts.ValidSourceCodes) > 0 {
		whitelist = make(map[string]struct{}, len(opts.ValidSourceCodes))
		for _, code := range opts.ValidSourceCodes {
			code = strings.ToUpper(strings.TrimSpace(code))
			if code != "" {
				whitelist[code] = struct{}{}
			}
		}
	}
	return &Parser{opts: opts, whitelist: whitelist}
}

// ParseAccountLines splits the report text into lines, classifies each via
// the recognizer cascade, and returns the matched records in original order.
// Statistical source codes are deduplicated (first occurrence wins) because
// some PDFs print the same occupancy metric twice with different cumulative
// columns. Line numbers always refer to positions in the original text.
func (p *Parser) ParseAccountLines(text string) []models.AccountLine {
	var out []models.AccountLine
	state := sectionUnknown
	seenStats := make(map[string]bool)

	for i, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		if len(line) < 3 {
			continue
		}

		var header bool
		state, header = nextSection(line, state)
		if header {
			continue
		}

		rec := p.classify(line, i+1, state)
		if rec == nil {
			continue
		}

		if rec.Kind == models.KindStatistical {
			key := strings.ToUpper(rec.SourceCode)
			if seenStats[key] {
				continue
			}
			seenStats[key] = true
		} else if !p.opts.IncludeZeroAmounts && rec.Amount.Abs().LessThan(p.opts.MinimumAmount) {
			continue
		}

		out = append(out, *rec)
	}
	return out
}

// GroupPaymentMethods buckets lines carrying a payment-method tag. Methods
// listed in PaymentMethodGroups land in their configured group; any other
// tagged method forms a group under its own name. Group order follows the
// first contributing line.
func (p *Parser) GroupPaymentMethods(lines []models.AccountLine) []models.PaymentMethodGroup {
	groupFor := p.configuredGroups()

	var order []string
	groups := make(map[string]*models.PaymentMethodGroup)

	for _, ln := range lines {
		if ln.PaymentMethod == "" {
			continue
		}
		name, configured := groupFor[strings.ToUpper(ln.PaymentMethod)]
		if !configured {
			name = ln.PaymentMethod
		}

		g := groups[name]
		if g == nil {
			g = &models.PaymentMethodGroup{GroupName: name, TotalAmount: decimal.Zero}
			groups[name] = g
			order = append(order, name)
		}
		if !containsString(g.PaymentMethods, ln.PaymentMethod) {
			g.PaymentMethods = append(g.PaymentMethods, ln.PaymentMethod)
		}
		g.TotalAmount = g.TotalAmount.Add(ln.Amount)
		g.Lines = append(g.Lines, ln)
	}

	out := make([]models.PaymentMethodGroup, 0, len(order))
	for _, name := range order {
		out = append(out, *groups[name])
	}
	return out
}

// ConsolidatedAccountLines parses the text and, when CombinePaymentMethods is
// set, replaces the detail lines of each *configured* group with a single
// synthetic combined-total line (source code "CC") at the position of the
// group's first member. Unconfigured payment-method lines and all other lines
// pass through untouched. With consolidation disabled the result is identical
// to ParseAccountLines.
func (p *Parser) ConsolidatedAccountLines(text string) []models.AccountLine {
	lines := p.ParseAccountLines(text)
	if !p.opts.CombinePaymentMethods || len(p.opts.PaymentMethodGroups) == 0 {
		return lines
	}

	groupFor := p.configuredGroups()

	totals := make(map[string]decimal.Decimal)
	for _, ln := range lines {
		if ln.PaymentMethod == "" {
			continue
		}
		if name, ok := groupFor[strings.ToUpper(ln.PaymentMethod)]; ok {
			totals[name] = totals[name].Add(ln.Amount)
		}
	}

	out := make([]models.AccountLine, 0, len(lines))
	emitted := make(map[string]bool)
	for _, ln := range lines {
		if ln.PaymentMethod != "" {
			if name, ok := groupFor[strings.ToUpper(ln.PaymentMethod)]; ok {
				if !emitted[name] {
					emitted[name] = true
					out = append(out, models.AccountLine{
						SourceCode:  "CC",
						Description: name,
						Amount:      totals[name],
						LineNumber:  ln.LineNumber,
						Kind:        models.KindPaymentTotal,
					})
				}
				continue
			}
		}
		out = append(out, ln)
	}
	return out
}

// Stats reports line counts and amount sums for one parse run. Purely
// diagnostic: it never changes what ParseAccountLines returns. Statistical
// records are excluded from the amount sums since they are not currency.
func (p *Parser) Stats(text string) models.ParsingStats {
	rawLines := splitLines(text)
	parsed := p.ParseAccountLines(text)

	stats := models.ParsingStats{
		TotalLines:   len(rawLines),
		ParsedLines:  len(parsed),
		SkippedLines: len(rawLines) - len(parsed),
		TotalAmount:  decimal.Zero,
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	for _, ln := range parsed {
		if ln.Kind == models.KindStatistical {
			continue
		}
		stats.TotalAmount = stats.TotalAmount.Add(ln.Amount)
		if ln.Amount.IsNegative() {
			stats.TotalDebits = stats.TotalDebits.Add(ln.Amount)
		} else {
			stats.TotalCredits = stats.TotalCredits.Add(ln.Amount)
		}
	}
	return stats
}

// configuredGroups inverts PaymentMethodGroups into method -> group name,
// with methods uppercased for case-insensitive lookup.
func (p *Parser) configuredGroups() map[string]string {
	groupFor := make(map[string]string)
	for name, methods := range p.opts.PaymentMethodGroups {
		for _, m := range methods {
			groupFor[strings.ToUpper(strings.TrimSpace(m))] = name
		}
	}
	return groupFor
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
