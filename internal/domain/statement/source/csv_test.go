package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
)

func TestParseCSV(t *testing.T) {
	t.Run("parses a tabular export", func(t *testing.T) {
		csv := `date,description,amount,balance
2024-07-14,FNB App Transfer from John Doe,400.00,"1,654.13"
2024-07-15,POS Purchase Checkers,-123.45,"1,530.68"`

		rows, warnings, err := ParseCSV(strings.NewReader(csv), "ZAR", statement.DefaultToggles())

		require.NoError(t, err)
		assert.Empty(t, warnings)
		require.Len(t, rows, 2)

		first := rows[0]
		assert.Equal(t, "2024-07-14", first.Date)
		require.NotNil(t, first.Amount)
		assert.Equal(t, "400", first.Amount.String())
		require.NotNil(t, first.Balance)
		assert.Equal(t, "1654.13", first.Balance.String())
		assert.Equal(t, "ZAR", first.Currency)
		assert.Equal(t, "transfer_in", first.Type)
		assert.Equal(t, 1, first.PageNo)
		assert.Equal(t, 2, first.LineNo)

		assert.Equal(t, "card_pos", rows[1].Type)
		assert.Equal(t, 3, rows[1].LineNo)
	})

	t.Run("bad amount becomes a warning not an error", func(t *testing.T) {
		csv := `date,description,amount,balance
2024-07-14,Good row,100.00,200.00
2024-07-15,Bad row,abc,300.00`

		rows, warnings, err := ParseCSV(strings.NewReader(csv), "ZAR", statement.DefaultToggles())

		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "line 3")
	})

	t.Run("missing balance stays nil", func(t *testing.T) {
		csv := `date,description,amount,balance
2024-07-14,No balance here,100.00,`

		rows, _, err := ParseCSV(strings.NewReader(csv), "ZAR", statement.DefaultToggles())

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].Balance)
	})

	t.Run("categorize toggle off leaves rows unclassified", func(t *testing.T) {
		csv := `date,description,amount,balance
2024-07-14,POS Purchase Checkers,-10.00,100.00`

		toggles := statement.DefaultToggles()
		toggles.Categorize = false
		rows, _, err := ParseCSV(strings.NewReader(csv), "ZAR", toggles)

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "other", rows[0].Type)
		assert.Equal(t, "unknown", rows[0].Method)
	})
}
