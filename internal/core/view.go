package core

// View is the external representation of a transaction. The id is left out on
// purpose; FullView carries it.
type View struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// FullView is the API-facing representation including the id.
type FullView struct {
	ID int64 `json:"id"`
	View
}

func (t Transaction) View() View {
	return View{
		Date:        t.Date.String(),
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
	}
}

func (t Transaction) FullView() FullView {
	return FullView{ID: t.ID, View: t.View()}
}

// Transaction converts the view back into an unstored, validated transaction.
func (v View) Transaction() (Transaction, error) {
	d, err := ParseDate(v.Date)
	if err != nil {
		return Transaction{}, err
	}
	return NewTransaction(d, v.Amount, v.Category, v.Description)
}

// Transaction converts the full view back, keeping the id.
func (v FullView) Transaction() (Transaction, error) {
	t, err := v.View.Transaction()
	if err != nil {
		return Transaction{}, err
	}
	t.ID = v.ID
	return t, nil
}
