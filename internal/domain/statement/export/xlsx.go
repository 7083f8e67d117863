package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
)

const sheetName = "Transactions"

// WriteXLSX serializes rows to a single-sheet workbook in the given column
// order, header first. Values are written as strings to match the CSV
// projection exactly.
func WriteXLSX(w io.Writer, rows []statement.TransactionRow, columns []string) error {
	columns = Columns(columns)

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]interface{}, len(columns))
	for i, row := range rows {
		for j, col := range columns {
			record[j] = FieldValue(row, col)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
