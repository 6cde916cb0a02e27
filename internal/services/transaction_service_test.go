package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/account"
	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

type publishedEvent struct {
	Type amqp.EventType
	Tx   core.Transaction
	Seq  int64
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) PublishTransactionEvent(_ context.Context, eventType amqp.EventType, t core.Transaction, seq int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Type: eventType, Tx: t, Seq: seq})
	return f.err
}

var october2023 = core.Month{Year: 2023, Month: 10}

func fixedClock() time.Time {
	return time.Date(2023, 10, 15, 12, 0, 0, 0, time.UTC)
}

func newService(t *testing.T, events EventPublisher) *TransactionService {
	t.Helper()
	return NewTransactionService(account.New(), core.NewBudget(), events).WithClock(fixedClock)
}

func create(t *testing.T, s *TransactionService, d core.Date, amount float64, category string) core.Transaction {
	t.Helper()
	tx, err := s.CreateTransaction(context.Background(), d, amount, category, "")
	require.NoError(t, err)
	return tx
}

func TestCreateTransaction(t *testing.T) {
	s := newService(t, nil)

	tx, err := s.CreateTransaction(context.Background(), core.NewDate(2023, 10, 1), -50, "Groceries", "Weekly shop")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tx.ID)
	assert.Equal(t, -50.0, s.Balance())

	_, err = s.CreateTransaction(context.Background(), core.NewDate(2023, 10, 1), -50, "  ", "")
	assert.ErrorIs(t, err, core.ErrEmptyCategory)

	_, err = s.CreateTransaction(context.Background(), core.Date{}, -50, "Groceries", "")
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	assert.Equal(t, 1, s.Count())
}

func TestMonthlySpendingAndIncome(t *testing.T) {
	s := newService(t, nil)
	d := core.NewDate(2023, 10, 5)
	create(t, s, d, -50, "Groceries")
	create(t, s, d, -25, "Entertainment")
	create(t, s, d, 1000, "Income")

	assert.Equal(t, 75.0, s.MonthlySpending(october2023))
	assert.Equal(t, 1000.0, s.MonthlyIncome(october2023))

	// zero month resolves to the clock's month
	assert.Equal(t, 75.0, s.MonthlySpending(core.Month{}))
	assert.Zero(t, s.MonthlySpending(core.Month{Year: 2023, Month: 9}))
}

func TestCategoryTotalsAndSpending(t *testing.T) {
	s := newService(t, nil)
	d := core.NewDate(2023, 10, 5)
	create(t, s, d, -50, "Groceries")
	create(t, s, d, -25, "Groceries")
	create(t, s, d, 1000, "Income")

	totals := s.CategoryTotals(october2023)
	assert.Equal(t, core.CategoryTotals{
		{Name: "Groceries", Amount: -75},
		{Name: "Income", Amount: 1000},
	}, totals)

	spending := s.CategorySpending(october2023)
	assert.Equal(t, core.CategoryTotals{{Name: "Groceries", Amount: 75}}, spending)
}

func TestMonthBoundaryExcludesFirstOfNextMonth(t *testing.T) {
	s := newService(t, nil)
	create(t, s, core.NewDate(2023, 9, 30), -1, "Before")
	create(t, s, core.NewDate(2023, 10, 1), -10, "First")
	create(t, s, core.NewDate(2023, 10, 31), -20, "Last")
	create(t, s, core.NewDate(2023, 11, 1), -40, "Next")

	assert.Equal(t, 30.0, s.MonthlySpending(october2023))
	_, ok := s.CategoryTotals(october2023).Get("Next")
	assert.False(t, ok, "a transaction on the 1st of the next month belongs to that month")

	assert.Equal(t, 40.0, s.MonthlySpending(core.Month{Year: 2023, Month: 11}))
}

func TestDecemberRollsOverToJanuary(t *testing.T) {
	s := newService(t, nil)
	create(t, s, core.NewDate(2023, 12, 31), -5, "A")
	create(t, s, core.NewDate(2024, 1, 1), -7, "B")

	assert.Equal(t, 5.0, s.MonthlySpending(core.Month{Year: 2023, Month: 12}))
	assert.Equal(t, 7.0, s.MonthlySpending(core.Month{Year: 2024, Month: 1}))
}

func TestMonthlySummary(t *testing.T) {
	s := newService(t, nil)
	assert.Equal(t, october2023, s.CurrentMonth())
	summary := s.MonthlySummary(core.Month{})
	assert.Equal(t, october2023, summary.Month)
	assert.Zero(t, summary.Spending)
	assert.Empty(t, summary.CategoryTotals)

	create(t, s, core.NewDate(2023, 10, 2), -12.5, "Food")
	create(t, s, core.NewDate(2023, 10, 3), 100, "Income")
	summary = s.MonthlySummary(october2023)
	assert.Equal(t, 12.5, summary.Spending)
	assert.Equal(t, 100.0, summary.Income)
	assert.Len(t, summary.CategoryTotals, 2)
	assert.Equal(t, core.CategoryTotals{{Name: "Food", Amount: 12.5}}, summary.CategorySpending)
}

func TestMonthlySummaryIsConsistentUnderWrites(t *testing.T) {
	s := newService(t, nil)
	ctx := context.Background()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5000; i++ {
			select {
			case <-stop:
				return
			default:
				_, err := s.CreateTransaction(ctx, core.NewDate(2023, 10, 2), -1, "Food", "")
				assert.NoError(t, err)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		summary := s.MonthlySummary(october2023)
		food, _ := summary.CategoryTotals.Get("Food")
		spent, _ := summary.CategorySpending.Get("Food")
		assert.Equal(t, summary.Spending, -food)
		assert.Equal(t, summary.Spending, spent)
	}
	close(stop)
	wg.Wait()
}

func TestBudgetStatus(t *testing.T) {
	s := newService(t, nil)
	require.NoError(t, s.SetBudget(context.Background(), "Food", 500))
	create(t, s, core.NewDate(2023, 10, 3), -200, "Food")
	create(t, s, core.NewDate(2023, 9, 3), -999, "Food")

	status, err := s.BudgetStatus("Food")
	require.NoError(t, err)
	assert.Equal(t, core.BudgetStatus{Category: "Food", Budget: 500, Spent: 200, Remaining: 300}, status)

	// refunds that make the net positive count as no spending
	create(t, s, core.NewDate(2023, 10, 4), 300, "Food")
	status, err = s.BudgetStatus("Food")
	require.NoError(t, err)
	assert.Zero(t, status.Spent)
	assert.Equal(t, 500.0, status.Remaining)

	status, err = s.BudgetStatus("Unknown")
	require.NoError(t, err)
	assert.Zero(t, status.Budget)

	err = s.SetBudget(context.Background(), "Food", -10)
	assert.ErrorIs(t, err, core.ErrNegativeBudget)
	assert.Equal(t, []string{"Food"}, s.BudgetCategories())
}

func TestBudgetStatusWithoutBudget(t *testing.T) {
	s := NewTransactionService(account.New(), nil, nil)
	_, err := s.BudgetStatus("Food")
	assert.ErrorIs(t, err, ErrNoBudget)
	assert.ErrorIs(t, s.SetBudget(context.Background(), "Food", 1), ErrNoBudget)
	assert.Nil(t, s.BudgetCategories())
}

func TestImportCSV(t *testing.T) {
	s := newService(t, nil)
	text := "2023-10-01,-50.00,Groceries,Weekly shop\n" +
		"not a line\n" +
		"10/02/2023,1000,Income\n"

	result := s.ImportCSV(context.Background(), text)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Line 2: line does not match expected format: not a line", result.Errors[0])

	all := s.ListTransactions(core.Filter{})
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(2), all[1].ID)
	assert.Equal(t, "Weekly shop", all[0].Description)
}

func TestImportCSVEdges(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		s := newService(t, nil)
		result := s.ImportCSV(context.Background(), "  \n\n ")
		assert.Zero(t, result.Imported)
		assert.NotNil(t, result.Errors)
		assert.Empty(t, result.Errors)
	})

	t.Run("crlf and surrounding blank lines", func(t *testing.T) {
		s := newService(t, nil)
		result := s.ImportCSV(context.Background(), "\n\n2023-10-01,-1,A\r\n2023-10-02,-2,B\r\n\n")
		assert.Equal(t, 2, result.Imported)
		assert.Empty(t, result.Errors)
	})

	t.Run("inner blank line is an error", func(t *testing.T) {
		s := newService(t, nil)
		result := s.ImportCSV(context.Background(), "2023-10-01,-1,A\n\n2023-10-02,-2,B")
		assert.Equal(t, 2, result.Imported)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "Line 2:")
	})

	t.Run("domain failure after parse", func(t *testing.T) {
		s := newService(t, nil)
		result := s.ImportCSV(context.Background(), "2023-10-01,-1,   ,x")
		assert.Zero(t, result.Imported)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "Line 1:")
		assert.Contains(t, result.Errors[0], "category")
	})
}

func TestUpdateAndDelete(t *testing.T) {
	s := newService(t, nil)
	tx := create(t, s, core.NewDate(2023, 10, 1), -10, "Food")

	updated, err := s.UpdateTransaction(context.Background(), tx.ID, core.TransactionPatch{Amount: core.Some(-15.0)})
	require.NoError(t, err)
	assert.Equal(t, -15.0, updated.Amount)
	assert.Equal(t, -15.0, s.Balance())

	_, err = s.UpdateTransaction(context.Background(), 42, core.TransactionPatch{Amount: core.Some(1.0)})
	assert.ErrorIs(t, err, core.ErrTransactionNotFound)

	removed, err := s.DeleteTransaction(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, removed)
	_, ok := s.FindByID(tx.ID)
	assert.False(t, ok)

	_, err = s.DeleteTransaction(context.Background(), tx.ID)
	assert.ErrorIs(t, err, core.ErrTransactionNotFound)
}

func TestEventsArePublished(t *testing.T) {
	pub := &fakePublisher{}
	s := newService(t, pub)
	ctx := context.Background()

	tx := create(t, s, core.NewDate(2023, 10, 1), -10, "Food")
	_, err := s.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Description: core.Some("lunch")})
	require.NoError(t, err)
	_, err = s.DeleteTransaction(ctx, tx.ID)
	require.NoError(t, err)

	// failed operations publish nothing
	_, _ = s.CreateTransaction(ctx, core.NewDate(2023, 10, 1), -10, "", "")
	_, _ = s.DeleteTransaction(ctx, tx.ID)

	require.Len(t, pub.events, 3)
	assert.Equal(t, amqp.EventCreated, pub.events[0].Type)
	assert.Equal(t, amqp.EventUpdated, pub.events[1].Type)
	assert.Equal(t, "lunch", pub.events[1].Tx.Description)
	assert.Equal(t, amqp.EventDeleted, pub.events[2].Type)
	assert.Equal(t, tx.ID, pub.events[2].Tx.ID)
	assert.Equal(t, []int64{1, 2, 3}, []int64{pub.events[0].Seq, pub.events[1].Seq, pub.events[2].Seq})
}

func TestConcurrentUpdatesPublishLedgerOrder(t *testing.T) {
	pub := &fakePublisher{}
	s := newService(t, pub)
	ctx := context.Background()
	tx := create(t, s, core.NewDate(2023, 10, 1), -1, "Food")

	var wg sync.WaitGroup
	for i := 2; i <= 20; i++ {
		wg.Add(1)
		go func(amount float64) {
			defer wg.Done()
			_, err := s.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Amount: core.Some(amount)})
			assert.NoError(t, err)
		}(-float64(i))
	}
	wg.Wait()

	// whatever order the events were published in, the highest seq carries
	// the state the ledger ended with
	var latest publishedEvent
	for _, ev := range pub.events {
		if ev.Seq > latest.Seq {
			latest = ev
		}
	}
	stored, ok := s.FindByID(tx.ID)
	require.True(t, ok)
	assert.Equal(t, stored, latest.Tx)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	s := newService(t, pub)

	tx, err := s.CreateTransaction(context.Background(), core.NewDate(2023, 10, 1), 5, "Gift", "")
	require.NoError(t, err)
	_, ok := s.FindByID(tx.ID)
	assert.True(t, ok)
	assert.Len(t, pub.events, 1)
}
