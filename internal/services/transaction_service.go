package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintrack/internal/account"
	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/importer"
	"fintrack/internal/log"
)

var ErrNoBudget = errors.New("no budget configured")

// EventPublisher receives every ledger change together with the ledger
// sequence number it was applied under. *amqp.Client implements it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, eventType amqp.EventType, t core.Transaction, seq int64) error
}

// ImportResult reports how many lines became transactions and why the others
// did not.
type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// TransactionService is the application layer over an Account and an optional
// Budget. When an EventPublisher is attached every change is published after
// it has been applied to the ledger.
type TransactionService struct {
	account *account.Account
	budget  *core.Budget
	events  EventPublisher
	now     func() time.Time
}

// NewTransactionService wires the service. budget and events may be nil.
func NewTransactionService(acct *account.Account, budget *core.Budget, events EventPublisher) *TransactionService {
	return &TransactionService{
		account: acct,
		budget:  budget,
		events:  events,
		now:     time.Now,
	}
}

// WithClock replaces the clock used to resolve "the current month".
func (s *TransactionService) WithClock(now func() time.Time) *TransactionService {
	s.now = now
	return s
}

// CurrentMonth is the month the service clock is in.
func (s *TransactionService) CurrentMonth() core.Month {
	return core.MonthOf(s.now())
}

// CreateTransaction validates and stores a new transaction.
func (s *TransactionService) CreateTransaction(ctx context.Context, date core.Date, amount float64, category, description string) (core.Transaction, error) {
	t, err := core.NewTransaction(date, amount, category, description)
	if err != nil {
		return core.Transaction{}, err
	}
	c, err := s.account.AddChange(t)
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created",
		ledgerFields(ctx, log.OpCreate).WithTransaction(c.Transaction).ToSlice()...)

	s.publish(ctx, amqp.EventCreated, c)
	return c.Transaction, nil
}

func (s *TransactionService) Balance() float64 {
	return s.account.Balance()
}

func (s *TransactionService) FindByID(id int64) (core.Transaction, bool) {
	return s.account.FindByID(id)
}

func (s *TransactionService) ListTransactions(f core.Filter) []core.Transaction {
	return s.account.List(f)
}

func (s *TransactionService) Count() int {
	return s.account.Count()
}

// UpdateTransaction applies p to the stored transaction. On error nothing changes.
func (s *TransactionService) UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	c, err := s.account.UpdateChange(id, p)
	if err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction updated",
		ledgerFields(ctx, log.OpUpdate).WithTransaction(c.Transaction).ToSlice()...)
	s.publish(ctx, amqp.EventUpdated, c)
	return c.Transaction, nil
}

// DeleteTransaction removes the transaction for good.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	c, err := s.account.DeleteChange(id)
	if err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction deleted",
		ledgerFields(ctx, log.OpDelete).WithTransaction(c.Transaction).ToSlice()...)
	s.publish(ctx, amqp.EventDeleted, c)
	return c.Transaction, nil
}

// MonthlySpending sums the magnitudes of the expenses in m.
func (s *TransactionService) MonthlySpending(m core.Month) float64 {
	return spendingOf(s.inMonth(m))
}

// MonthlyIncome sums the positive amounts in m.
func (s *TransactionService) MonthlyIncome(m core.Month) float64 {
	return incomeOf(s.inMonth(m))
}

// CategoryTotals returns the signed net per category in m, in first-seen order.
func (s *TransactionService) CategoryTotals(m core.Month) core.CategoryTotals {
	return totalsOf(s.inMonth(m))
}

// CategorySpending keeps only the categories whose net is negative, as
// positive magnitudes.
func (s *TransactionService) CategorySpending(m core.Month) core.CategoryTotals {
	return spendingByCategory(s.CategoryTotals(m))
}

// MonthlySummary bundles the aggregations for one month. Every figure is
// computed from the same read of the ledger, so they always agree with each
// other even while writes are in flight.
func (s *TransactionService) MonthlySummary(m core.Month) core.MonthSummary {
	m = m.Or(s.now())
	txs := s.account.List(m.Filter())
	totals := totalsOf(txs)
	return core.MonthSummary{
		Month:            m,
		Spending:         spendingOf(txs),
		Income:           incomeOf(txs),
		CategoryTotals:   totals,
		CategorySpending: spendingByCategory(totals),
	}
}

func spendingOf(txs []core.Transaction) float64 {
	var total float64
	for _, t := range txs {
		if t.Amount < 0 {
			total -= t.Amount
		}
	}
	return total
}

func incomeOf(txs []core.Transaction) float64 {
	var total float64
	for _, t := range txs {
		if t.Amount > 0 {
			total += t.Amount
		}
	}
	return total
}

func totalsOf(txs []core.Transaction) core.CategoryTotals {
	var totals core.CategoryTotals
	for _, t := range txs {
		totals = totals.Add(t.Category, t.Amount)
	}
	return totals
}

func spendingByCategory(totals core.CategoryTotals) core.CategoryTotals {
	var spending core.CategoryTotals
	for _, ca := range totals {
		if ca.Amount < 0 {
			spending = spending.Add(ca.Name, -ca.Amount)
		}
	}
	return spending
}

// SetBudget stores a monthly limit for category.
func (s *TransactionService) SetBudget(ctx context.Context, category string, amount float64) error {
	if s.budget == nil {
		return ErrNoBudget
	}
	if err := s.budget.SetBudget(category, amount); err != nil {
		return fmt.Errorf("set budget for %q: %w", category, err)
	}
	slog.InfoContext(ctx, "Budget set",
		append(ledgerFields(ctx, log.OpUpdate).ToSlice(),
			log.FieldCategory, category,
			log.FieldAmount, amount)...)
	return nil
}

// BudgetCategories lists the categories with an explicit limit.
func (s *TransactionService) BudgetCategories() []string {
	if s.budget == nil {
		return nil
	}
	return s.budget.Categories()
}

// BudgetStatus reports the limit, this month's spending and what is left for
// category. Spending is the magnitude of the category's net when it is
// negative, otherwise zero.
func (s *TransactionService) BudgetStatus(category string) (core.BudgetStatus, error) {
	if s.budget == nil {
		return core.BudgetStatus{}, ErrNoBudget
	}
	net, _ := s.CategoryTotals(core.Month{}).Get(category)
	var spent float64
	if net < 0 {
		spent = -net
	}
	return core.BudgetStatus{
		Category:  category,
		Budget:    s.budget.GetBudget(category),
		Spent:     spent,
		Remaining: s.budget.GetRemaining(category, spent),
	}, nil
}

// ImportCSV creates one transaction per line of text. A failing line is
// recorded with its 1-based number and the rest are still processed; lines
// imported before a failure stay imported.
func (s *TransactionService) ImportCSV(ctx context.Context, text string) ImportResult {
	result := ImportResult{Errors: []string{}}

	text = strings.TrimSpace(text)
	if text == "" {
		return result
	}

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if err := s.importLine(ctx, line); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: %v", i+1, err))
			continue
		}
		result.Imported++
	}

	slog.InfoContext(ctx, "CSV import finished",
		append(ledgerFields(ctx, log.OpImport).ToSlice(),
			"imported", result.Imported,
			"failed", len(result.Errors))...)
	return result
}

func (s *TransactionService) importLine(ctx context.Context, line string) error {
	f, err := importer.ParseLine(line)
	if err != nil {
		return err
	}
	_, err = s.CreateTransaction(ctx, f.Date, f.Amount, f.Category, f.Description)
	return err
}

func (s *TransactionService) inMonth(m core.Month) []core.Transaction {
	return s.account.List(m.Or(s.now()).Filter())
}

func (s *TransactionService) publish(ctx context.Context, eventType amqp.EventType, c account.Change) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, eventType, c.Transaction, c.Seq); err != nil {
		// the ledger already holds the change
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			append(ledgerFields(ctx, log.OpSync).WithTransaction(c.Transaction).WithError(err).ToSlice(),
				log.FieldEventType, string(eventType))...)
	}
}

func ledgerFields(ctx context.Context, op string) log.LogFields {
	return log.NewFields().
		WithComponent(log.ComponentLedger).
		WithRequestID(log.RequestID(ctx)).
		WithOperation(op)
}
