package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/settleops/settlement-enricher/internal/types"
)

// writeWorkbook creates a single-sheet XLSX with the given rows.
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseFileClassifiesLikeCSV(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]interface{}{
		{"Sender", "Receiver", "Transfer ID"},
		{"MWK"},
		{"a", "b", "T1"},
	})

	ds, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sender", "Receiver", "Transfer ID"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, types.SectionHeader, ds.Rows[0].Kind)
	assert.Equal(t, "MWK", ds.Rows[0].Label)
	assert.Equal(t, types.DataRow, ds.Rows[1].Kind)
	assert.Equal(t, "T1", ds.Rows[1].Fields["Transfer ID"])
	assert.Equal(t, path, ds.SourceFile)
}

func TestParseFileEmptySheet(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, nil)
	_, err := ParseFile(path)
	require.Error(t, err)
}

func TestParseFileMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
}
