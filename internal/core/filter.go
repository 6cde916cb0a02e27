package core

// Filter selects transactions. Every set field restricts the result and the
// restrictions are combined with AND. Start and End are inclusive.
type Filter struct {
	Start    Optional[Date]
	End      Optional[Date]
	Category Optional[string]
}

// Matches reports whether t satisfies every set restriction.
func (f Filter) Matches(t Transaction) bool {
	if f.Start.Set && t.Date.Before(f.Start.Value) {
		return false
	}
	if f.End.Set && t.Date.After(f.End.Value) {
		return false
	}
	if f.Category.Set && t.Category != f.Category.Value {
		return false
	}
	return true
}
