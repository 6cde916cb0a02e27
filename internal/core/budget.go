package core

import (
	"errors"
	"math"
	"sort"
	"sync"
)

var (
	ErrNegativeBudget = errors.New("budget amount cannot be negative")
	ErrInvalidBudget  = errors.New("budget amount must be a number")
)

// Budget holds a monthly spending limit per category. Categories without an
// entry have an implicit limit of 0.
type Budget struct {
	mu     sync.RWMutex
	limits map[string]float64
}

func NewBudget() *Budget {
	return &Budget{limits: make(map[string]float64)}
}

// SetBudget upserts the limit for category. Negative limits are rejected and
// leave the budget unchanged.
func (b *Budget) SetBudget(category string, amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidBudget
	}
	if amount < 0 {
		return ErrNegativeBudget
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.limits[category] = amount
	return nil
}

// GetBudget returns the stored limit or 0.
func (b *Budget) GetBudget(category string) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.limits[category]
}

// GetRemaining returns limit - spent. The result is negative when over budget.
func (b *Budget) GetRemaining(category string, spent float64) float64 {
	return b.GetBudget(category) - spent
}

// Categories returns the categories with an explicit limit, sorted.
func (b *Budget) Categories() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.limits))
	for c := range b.limits {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
