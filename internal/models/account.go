package models

import "github.com/shopspring/decimal"

// LineKind tags which recognizer in the classification cascade produced an
// AccountLine. Exactly one kind applies per line.
type LineKind string

const (
	KindLedger          LineKind = "ledger"
	KindPaymentTotal    LineKind = "payment-total"
	KindSummary         LineKind = "summary"
	KindEmbedded        LineKind = "embedded"
	KindGLCLCoded       LineKind = "glcl-coded"
	KindGLCLSummary     LineKind = "glcl-summary"
	KindStatistical     LineKind = "statistical"
	KindCategoryDetail  LineKind = "category-detail"
	KindCategorySummary LineKind = "category-summary"
)

// AccountLine represents one classified line from a night-audit report.
// Values are immutable once produced by the parser.
type AccountLine struct {
	// SourceCode is the short account/transaction code or summary label.
	// Duplicates across the sequence are valid, except statistical codes
	// which are deduplicated (first occurrence wins).
	SourceCode string `json:"sourceCode"`

	// Description is the human-readable label. Summary-style lines use a
	// fixed label ("Ledger Balance", "Payment Method Total", "Summary Total").
	Description string `json:"description"`

	// Amount is the first amount field on the line, in major currency units.
	// Later amount fields (running totals) are ignored. Statistical lines
	// carry counts or percentages here rather than currency.
	Amount decimal.Decimal `json:"amount"`

	// PaymentMethod is set only on embedded/detail lines where a card-brand
	// token was found in the raw text. Payment-method *summary* lines never
	// carry it, so brand totals are not double-counted downstream.
	PaymentMethod string `json:"paymentMethod,omitempty"`

	// OriginalLine is the verbatim source text, kept for audit trails.
	OriginalLine string `json:"originalLine"`

	// LineNumber is the 1-based position in the original report text.
	LineNumber int `json:"lineNumber"`

	Kind LineKind `json:"kind"`
}

// PaymentMethodGroup is a derived view grouping payment-method detail lines
// into a configured bucket. It is recomputed from the AccountLine sequence on
// demand and never persisted.
type PaymentMethodGroup struct {
	GroupName      string          `json:"groupName"`
	PaymentMethods []string        `json:"paymentMethods"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Lines          []AccountLine   `json:"lines"`
}

// ParsingStats summarizes a parse run for diagnostics. It never affects the
// returned record sequence.
type ParsingStats struct {
	TotalLines   int             `json:"totalLines"`
	ParsedLines  int             `json:"parsedLines"`
	SkippedLines int             `json:"skippedLines"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	TotalDebits  decimal.Decimal `json:"totalDebits"`
	TotalCredits decimal.Decimal `json:"totalCredits"`
}
