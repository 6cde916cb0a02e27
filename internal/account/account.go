// Package account holds the in-memory ledger that owns every stored
// transaction and is the only place ids are assigned.
package account

import (
	"fmt"
	"sync"

	"fintrack/internal/core"
)

// Account keeps transactions in insertion order. Stored values are copies;
// callers never share memory with the ledger.
type Account struct {
	mu           sync.RWMutex
	transactions []core.Transaction
	nextID       int64
	seq          int64
}

// Change is a transaction as one mutation left it. Seq is the ledger
// sequence number of that mutation: it starts at 1 and grows with every
// add, update and delete, so later changes to a transaction always carry a
// higher Seq than earlier ones.
type Change struct {
	Transaction core.Transaction
	Seq         int64
}

func New() *Account {
	return &Account{nextID: 1}
}

// Add validates t, assigns the next id and appends it. The identified copy is
// returned; t itself is not modified.
func (a *Account) Add(t core.Transaction) (core.Transaction, error) {
	c, err := a.AddChange(t)
	return c.Transaction, err
}

// AddChange is Add reporting the sequence number of the insert.
func (a *Account) AddChange(t core.Transaction) (Change, error) {
	if t.ID != 0 {
		return Change{}, fmt.Errorf("%w: id %d", core.ErrAlreadyStored, t.ID)
	}
	if err := t.Validate(); err != nil {
		return Change{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	t.ID = a.nextID
	a.nextID++
	a.transactions = append(a.transactions, t)
	return a.changeLocked(t), nil
}

// List returns the transactions matching f, in insertion order.
func (a *Account) List(f core.Filter) []core.Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]core.Transaction, 0, len(a.transactions))
	for _, t := range a.transactions {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Balance is the sum of every stored amount.
func (a *Account) Balance() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var total float64
	for _, t := range a.transactions {
		total += t.Amount
	}
	return total
}

func (a *Account) FindByID(id int64) (core.Transaction, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if i := a.indexOf(id); i >= 0 {
		return a.transactions[i], true
	}
	return core.Transaction{}, false
}

// Update replaces the stored transaction with the patched value. Either every
// provided field is applied or none is.
func (a *Account) Update(id int64, p core.TransactionPatch) (core.Transaction, error) {
	c, err := a.UpdateChange(id, p)
	return c.Transaction, err
}

// UpdateChange is Update reporting the sequence number of the update.
func (a *Account) UpdateChange(id int64, p core.TransactionPatch) (Change, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.indexOf(id)
	if i < 0 {
		return Change{}, fmt.Errorf("%w: id %d", core.ErrTransactionNotFound, id)
	}
	updated, err := p.Apply(a.transactions[i])
	if err != nil {
		return Change{}, err
	}
	a.transactions[i] = updated
	return a.changeLocked(updated), nil
}

// Delete removes the transaction permanently and returns it. Its id is never
// handed out again.
func (a *Account) Delete(id int64) (core.Transaction, error) {
	c, err := a.DeleteChange(id)
	return c.Transaction, err
}

// DeleteChange is Delete reporting the sequence number of the removal.
func (a *Account) DeleteChange(id int64) (Change, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.indexOf(id)
	if i < 0 {
		return Change{}, fmt.Errorf("%w: id %d", core.ErrTransactionNotFound, id)
	}
	removed := a.transactions[i]
	a.transactions = append(a.transactions[:i], a.transactions[i+1:]...)
	return a.changeLocked(removed), nil
}

// Seq is the sequence number of the latest change, zero before the first.
func (a *Account) Seq() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.seq
}

func (a *Account) changeLocked(t core.Transaction) Change {
	a.seq++
	return Change{Transaction: t, Seq: a.seq}
}

func (a *Account) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.transactions)
}

// NextID is the id the next Add will assign.
func (a *Account) NextID() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.nextID
}

// indexOf must be called with the lock held.
func (a *Account) indexOf(id int64) int {
	for i, t := range a.transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}
