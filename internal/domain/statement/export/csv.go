package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
)

// WriteCSV serializes rows in the given column order, header first. Field
// values containing the delimiter or quotes are escaped per RFC 4180 by
// the csv writer.
func WriteCSV(w io.Writer, rows []statement.TransactionRow, columns []string) error {
	columns = Columns(columns)
	cw := csv.NewWriter(w)

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = FieldValue(row, col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
