// Package writer exports parsed account lines as CSV for spreadsheet review
// and journal-entry import.
package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/night-audit-converter/internal/models"
)

// accountLineRow is the CSV projection of one account line. Amounts are
// rendered with two decimal places; statistical counts keep their raw scale.
type accountLineRow struct {
	LineNumber    int    `csv:"line_number"`
	SourceCode    string `csv:"source_code"`
	LedgerAccount string `csv:"ledger_account"`
	Description   string `csv:"description"`
	Amount        string `csv:"amount"`
	PaymentMethod string `csv:"payment_method"`
	Kind          string `csv:"kind"`
}

// AccountResolver maps a source code to a ledger account. Optional; rows
// without a resolution leave the column blank.
type AccountResolver interface {
	Account(code string) (string, bool)
}

// CSVWriter renders account lines to CSV.
type CSVWriter struct {
	// Accounts, when set, fills the ledger_account column.
	Accounts AccountResolver
}

// Write renders lines as CSV to out.
func (w *CSVWriter) Write(out io.Writer, lines []models.AccountLine) error {
	rows := make([]accountLineRow, 0, len(lines))
	for _, ln := range lines {
		row := accountLineRow{
			LineNumber:    ln.LineNumber,
			SourceCode:    ln.SourceCode,
			Description:   ln.Description,
			Amount:        ln.Amount.StringFixed(2),
			PaymentMethod: ln.PaymentMethod,
			Kind:          string(ln.Kind),
		}
		if ln.Kind == models.KindStatistical {
			row.Amount = ln.Amount.String()
		}
		if w.Accounts != nil {
			if account, ok := w.Accounts.Account(ln.SourceCode); ok {
				row.LedgerAccount = account
			}
		}
		rows = append(rows, row)
	}

	if err := gocsv.Marshal(&rows, out); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteToFile renders lines as CSV to a file at path.
func (w *CSVWriter) WriteToFile(path string, lines []models.AccountLine) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, lines)
}
