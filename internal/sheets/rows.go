package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// Header is the first row of a mirror sheet.
var Header = []any{"ID", "Date", "Amount", "Category", "Description"}

// Row encodes t as [id, date, amount, category, description].
func Row(t core.Transaction) []any {
	return []any{t.ID, t.Date.String(), t.Amount, t.Category, t.Description}
}

// ParseRow decodes a row written by Row. Cells may come back as strings or
// numbers depending on how the sheet rendered them.
func ParseRow(cells []any) (core.Transaction, error) {
	cols := toStrings(cells)
	if len(cols) < 4 {
		return core.Transaction{}, fmt.Errorf("row has %d cells, want at least 4", len(cols))
	}
	id, err := strconv.ParseInt(cols[0], 10, 64)
	if err != nil || id <= 0 {
		return core.Transaction{}, fmt.Errorf("invalid id %q", cols[0])
	}
	date, err := core.ParseDate(cols[1])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(cols[2], ",", "."), 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid amount %q", cols[2])
	}
	description := ""
	if len(cols) > 4 {
		description = cols[4]
	}
	t, err := core.NewTransaction(date, amount, cols[3], description)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = id
	return t, nil
}

// IsBlank reports whether every cell of a row is empty, as left by a cleared row.
func IsBlank(cells []any) bool {
	for _, v := range toStrings(cells) {
		if v != "" {
			return false
		}
	}
	return true
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
