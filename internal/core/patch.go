package core

// Optional distinguishes "not provided" from "provided with the zero value".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a provided Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the value and whether it was provided.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// TransactionPatch is a partial update. Fields left unset are not touched.
type TransactionPatch struct {
	Date        Optional[Date]
	Amount      Optional[float64]
	Category    Optional[string]
	Description Optional[string]
}

// IsEmpty reports whether the patch provides no field at all.
func (p TransactionPatch) IsEmpty() bool {
	return !p.Date.Set && !p.Amount.Set && !p.Category.Set && !p.Description.Set
}

// Apply returns t with every provided field replaced. All provided fields are
// validated before anything is applied, so on error t is returned unchanged.
func (p TransactionPatch) Apply(t Transaction) (Transaction, error) {
	if p.Date.Set {
		if err := p.Date.Value.Validate(); err != nil {
			return t, err
		}
	}
	if p.Amount.Set {
		if err := validateAmount(p.Amount.Value); err != nil {
			return t, err
		}
	}
	if p.Category.Set {
		if err := validateCategory(p.Category.Value); err != nil {
			return t, err
		}
	}

	out := t
	if p.Date.Set {
		out.Date = p.Date.Value
	}
	if p.Amount.Set {
		out.Amount = p.Amount.Value
	}
	if p.Category.Set {
		out.Category = p.Category.Value
	}
	if p.Description.Set {
		out.Description = p.Description.Value
	}
	return out, nil
}
