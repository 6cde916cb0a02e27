// Package repository is a query and update façade over an Account for
// callers that only need to know whether an operation succeeded.
package repository

import (
	"fintrack/internal/account"
	"fintrack/internal/core"
)

type TransactionRepository struct {
	account *account.Account
}

func New(acct *account.Account) *TransactionRepository {
	return &TransactionRepository{account: acct}
}

// Save stores t and returns the identified copy. Validation errors are
// returned unchanged.
func (r *TransactionRepository) Save(t core.Transaction) (core.Transaction, error) {
	return r.account.Add(t)
}

func (r *TransactionRepository) FindByID(id int64) (core.Transaction, bool) {
	return r.account.FindByID(id)
}

func (r *TransactionRepository) FindAll(f core.Filter) []core.Transaction {
	return r.account.List(f)
}

// FindByDateRange returns the transactions dated from start to end, both
// inclusive. An unset end leaves the range open.
func (r *TransactionRepository) FindByDateRange(start core.Date, end core.Optional[core.Date]) []core.Transaction {
	return r.account.List(core.Filter{Start: core.Some(start), End: end})
}

func (r *TransactionRepository) FindByCategory(category string) []core.Transaction {
	return r.account.List(core.Filter{Category: core.Some(category)})
}

// Update reports whether the patch was applied.
func (r *TransactionRepository) Update(id int64, p core.TransactionPatch) bool {
	_, err := r.account.Update(id, p)
	return err == nil
}

// Delete reports whether a transaction was removed.
func (r *TransactionRepository) Delete(id int64) bool {
	_, err := r.account.Delete(id)
	return err == nil
}

func (r *TransactionRepository) Balance() float64 {
	return r.account.Balance()
}

func (r *TransactionRepository) Count() int {
	return r.account.Count()
}

func (r *TransactionRepository) Exists(id int64) bool {
	_, ok := r.account.FindByID(id)
	return ok
}
