package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
)

func sampleRow() statement.TransactionRow {
	amount := decimal.RequireFromString("-123.45")
	balance := decimal.RequireFromString("1530.68")
	return statement.TransactionRow{
		Date:          "2024-07-15",
		Description:   "POS Purchase Checkers",
		Amount:        &amount,
		Balance:       &balance,
		Currency:      "ZAR",
		Type:          "card_pos",
		Method:        "pos",
		BankName:      "FNB",
		AccountNumber: "62001234567",
		StatementID:   gofakeit.UUID(),
		TransactionID: "a1b2c3d4e5f60718",
		PageNo:        1,
		LineNo:        3,
		SourceFile:    "statement.txt",
	}
}

func TestWriteCSV(t *testing.T) {
	t.Run("default columns", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, []statement.TransactionRow{sampleRow()}, nil))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, DefaultColumns, records[0])
		assert.Len(t, records[1], len(DefaultColumns))

		byName := map[string]string{}
		for i, col := range records[0] {
			byName[col] = records[1][i]
		}
		assert.Equal(t, "2024-07-15", byName["date"])
		assert.Equal(t, "-123.45", byName["amount"])
		assert.Equal(t, "1530.68", byName["balance"])
		assert.Equal(t, "card_pos", byName["type"])
		assert.Empty(t, byName["fee_amount"])
		assert.Empty(t, byName["value_date"])
	})

	t.Run("custom column order", func(t *testing.T) {
		var buf bytes.Buffer
		columns := []string{"amount", "date", "description"}
		require.NoError(t, WriteCSV(&buf, []statement.TransactionRow{sampleRow()}, columns))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, columns, records[0])
		assert.Equal(t, []string{"-123.45", "2024-07-15", "POS Purchase Checkers"}, records[1])
	})

	t.Run("descriptions with commas survive", func(t *testing.T) {
		row := sampleRow()
		row.Description = "Transfer, urgent \"rent\""

		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, []statement.TransactionRow{row}, []string{"description"}))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, row.Description, records[1][0])
	})
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []statement.TransactionRow{sampleRow()}, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, "2024-07-15", rows[1][0])
	assert.Equal(t, "-123.45", rows[1][3])
}

func TestFieldValue(t *testing.T) {
	t.Run("unknown column is empty", func(t *testing.T) {
		assert.Empty(t, FieldValue(sampleRow(), "no_such_column"))
	})

	t.Run("nil decimals are empty not zero", func(t *testing.T) {
		row := statement.TransactionRow{}
		assert.Empty(t, FieldValue(row, "amount"))
		assert.Empty(t, FieldValue(row, "fee_amount"))
	})
}
