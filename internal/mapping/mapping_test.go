package mapping

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}

	path := filepath.Join(t.TempDir(), "mapping.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadWithHeader(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Source Code", "GL Account", "Description"},
		{"RC", "4010", "Room charge revenue"},
		{"9", "2300", "City lodging tax"},
		{"91", "2310", "State lodging tax"},
		{"", "9999", "blank code is skipped"},
	})

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"RC", "9", "91"}, m.SourceCodes())

	account, ok := m.Account("rc")
	require.True(t, ok)
	assert.Equal(t, "4010", account)

	_, ok = m.Account("ZZ")
	assert.False(t, ok)
}

func TestLoadWithoutHeader(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"X3", "4500", "Pet charge"},
		{"V1", "1100", "Visa settlement"},
	})

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"X3", "V1"}, m.SourceCodes())
}

func TestLoadDuplicateCodesFirstWins(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Source Code", "GL Account", "Description"},
		{"RC", "4010", "first"},
		{"RC", "4020", "second"},
	})

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, m.Len())
	account, ok := m.Account("RC")
	require.True(t, ok)
	assert.Equal(t, "4010", account)
}

func TestLoadEmptyWorkbook(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Source Code", "GL Account", "Description"},
	})

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
