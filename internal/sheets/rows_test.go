package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestRowRoundTrip(t *testing.T) {
	tx := core.Transaction{ID: 9, Date: core.NewDate(2023, 10, 1), Amount: -50.25, Category: "Groceries", Description: "Weekly shop"}

	row := Row(tx)
	assert.Equal(t, []any{int64(9), "2023-10-01", -50.25, "Groceries", "Weekly shop"}, row)

	back, err := ParseRow(row)
	require.NoError(t, err)
	assert.Equal(t, tx, back)
}

func TestParseRowRenderedValues(t *testing.T) {
	got, err := ParseRow([]any{"12", " 2024-01-31 ", "1000,5", "Income"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.ID)
	assert.Equal(t, 1000.5, got.Amount)
	assert.Equal(t, "", got.Description)

	got, err = ParseRow([]any{float64(3), "2024-01-01", float64(-2), "Fun", ""})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
}

func TestParseRowRejects(t *testing.T) {
	bads := map[string][]any{
		"short":      {"1", "2023-10-01", "5"},
		"header":     Header,
		"bad date":   {"1", "10/01/2023", "5", "A"},
		"bad amount": {"1", "2023-10-01", "five", "A"},
		"empty cat":  {"1", "2023-10-01", "5", " "},
		"zero id":    {"0", "2023-10-01", "5", "A"},
	}
	for name, row := range bads {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRow(row)
			assert.Error(t, err)
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(nil))
	assert.True(t, IsBlank([]any{"", " "}))
	assert.False(t, IsBlank([]any{"", "x"}))
}
