package core

import (
	"bytes"
	"encoding/json"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount float64
}

// CategoryTotals keeps category sums in first-seen order, one entry per category.
type CategoryTotals []CategoryAmount

// Add accumulates amount into name, appending the category on first sight.
func (c CategoryTotals) Add(name string, amount float64) CategoryTotals {
	for i := range c {
		if c[i].Name == name {
			c[i].Amount += amount
			return c
		}
	}
	return append(c, CategoryAmount{Name: name, Amount: amount})
}

// Get returns the amount for name.
func (c CategoryTotals) Get(name string) (float64, bool) {
	for _, ca := range c {
		if ca.Name == name {
			return ca.Amount, true
		}
	}
	return 0, false
}

// Map flattens the totals. Order is lost.
func (c CategoryTotals) Map() map[string]float64 {
	out := make(map[string]float64, len(c))
	for _, ca := range c {
		out[ca.Name] = ca.Amount
	}
	return out
}

// MarshalJSON encodes the totals as a JSON object preserving insertion order.
func (c CategoryTotals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ca := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(ca.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(ca.Amount)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BudgetStatus is the budget position of one category in the current month.
type BudgetStatus struct {
	Category  string  `json:"category"`
	Budget    float64 `json:"budget"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
}

// MonthSummary is a compact summary for a specific year+month.
type MonthSummary struct {
	Month            Month          `json:"-"`
	Spending         float64        `json:"spending"`
	Income           float64        `json:"income"`
	CategoryTotals   CategoryTotals `json:"category_totals"`
	CategorySpending CategoryTotals `json:"category_spending"`
}
