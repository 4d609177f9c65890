// Package mapping loads the source-code to ledger-account mapping workbook
// maintained by the accounting team. The parser only consumes the code set as
// an opaque whitelist; the account numbers are carried through for journal
// export.
package mapping

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Entry is one row of the mapping workbook.
type Entry struct {
	SourceCode    string
	LedgerAccount string
	Description   string
}

// Mapping is the loaded workbook content, keyed by uppercased source code.
type Mapping struct {
	entries []Entry
	byCode  map[string]Entry
}

// Load reads the mapping workbook at path.
func Load(path string) (*Mapping, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping workbook %q: %w", path, err)
	}
	defer f.Close()
	return fromFile(f)
}

// LoadReader reads a mapping workbook from r.
func LoadReader(r io.Reader) (*Mapping, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping workbook: %w", err)
	}
	defer f.Close()
	return fromFile(f)
}

func fromFile(f *excelize.File) (*Mapping, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("mapping workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	m := &Mapping{byCode: make(map[string]Entry)}

	codeCol, accountCol, descCol := 0, 1, 2
	start := 0
	if len(rows) > 0 && looksLikeHeader(rows[0]) {
		codeCol, accountCol, descCol = headerColumns(rows[0])
		start = 1
	}

	for _, row := range rows[start:] {
		code := strings.ToUpper(strings.TrimSpace(cell(row, codeCol)))
		if code == "" {
			continue
		}
		e := Entry{
			SourceCode:    code,
			LedgerAccount: strings.TrimSpace(cell(row, accountCol)),
			Description:   strings.TrimSpace(cell(row, descCol)),
		}
		if _, dup := m.byCode[code]; dup {
			continue
		}
		m.byCode[code] = e
		m.entries = append(m.entries, e)
	}

	if len(m.entries) == 0 {
		return nil, fmt.Errorf("mapping workbook contains no source codes")
	}
	return m, nil
}

// SourceCodes returns the code whitelist in workbook order, ready for
// parser.Options.ValidSourceCodes.
func (m *Mapping) SourceCodes() []string {
	codes := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		codes = append(codes, e.SourceCode)
	}
	return codes
}

// Account returns the ledger account mapped to a source code
// (case-insensitive).
func (m *Mapping) Account(code string) (string, bool) {
	e, ok := m.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return "", false
	}
	return e.LedgerAccount, true
}

// Entries returns all rows in workbook order.
func (m *Mapping) Entries() []Entry {
	return m.entries
}

// Len reports the number of mapped source codes.
func (m *Mapping) Len() int {
	return len(m.entries)
}

// looksLikeHeader reports whether the first row names columns instead of
// holding data.
func looksLikeHeader(row []string) bool {
	for _, v := range row {
		lower := strings.ToLower(v)
		if strings.Contains(lower, "code") || strings.Contains(lower, "account") ||
			strings.Contains(lower, "description") {
			return true
		}
	}
	return false
}

// headerColumns resolves column indices from a header row, falling back to
// the conventional code/account/description order for anything unnamed.
func headerColumns(row []string) (codeCol, accountCol, descCol int) {
	codeCol, accountCol, descCol = 0, 1, 2
	for i, v := range row {
		lower := strings.ToLower(strings.TrimSpace(v))
		switch {
		case strings.Contains(lower, "source") || lower == "code":
			codeCol = i
		case strings.Contains(lower, "account") || strings.Contains(lower, "gl"):
			accountCol = i
		case strings.Contains(lower, "desc"):
			descCol = i
		}
	}
	return codeCol, accountCol, descCol
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
