package core

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidMonth = errors.New("invalid month")

// Month identifies a calendar month. The zero Month stands for "the current
// month" and is resolved by Or.
type Month struct {
	Year  int
	Month int // 1-12
}

// NewMonth validates year and month.
func NewMonth(year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	if year < 1 || year > 9999 {
		return Month{}, fmt.Errorf("%w: year %d", ErrInvalidMonth, year)
	}
	return Month{Year: year, Month: month}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: int(t.Month())}
}

// IsZero reports whether either part is missing.
func (m Month) IsZero() bool {
	return m.Year == 0 || m.Month == 0
}

// Or returns m, or the month containing now when m is zero.
func (m Month) Or(now time.Time) Month {
	if m.IsZero() {
		return MonthOf(now)
	}
	return m
}

// Window returns the half-open interval [first day, first day of next month).
// December rolls over to January of the following year.
func (m Month) Window() (start, next Date) {
	start = NewDate(m.Year, m.Month, 1)
	if m.Month == 12 {
		next = NewDate(m.Year+1, 1, 1)
	} else {
		next = NewDate(m.Year, m.Month+1, 1)
	}
	return start, next
}

// Filter returns the inclusive filter covering exactly the days of m.
func (m Month) Filter() Filter {
	start, next := m.Window()
	return Filter{
		Start: Some(start),
		End:   Some(next.AddDays(-1)),
	}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}
