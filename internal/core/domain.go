package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used by every external view.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date without a clock component, always at UTC midnight.
	Date struct {
		time.Time
	}

	// Transaction is one signed monetary movement. Positive amounts are income,
	// negative amounts are expenses. ID is zero until an Account stores it.
	Transaction struct {
		ID          int64
		Date        Date
		Amount      float64
		Category    string
		Description string
	}
)

var (
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrInvalidDate         = fmt.Errorf("%w: date must be a valid calendar date", ErrInvalidTransaction)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be a number", ErrInvalidTransaction)
	ErrEmptyCategory       = fmt.Errorf("%w: category must be a non-empty string", ErrInvalidTransaction)
	ErrAlreadyStored       = fmt.Errorf("%w: transaction already belongs to an account", ErrInvalidTransaction)
	ErrTransactionNotFound = fmt.Errorf("%w: transaction not found", ErrInvalidTransaction)
)

// NewDate creates a new Date from year, month, day. Out of range values are
// normalized the way time.Date does; use MakeDate to reject them instead.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// MakeDate creates a Date and fails when the parts do not name a real calendar day.
func MakeDate(year, month, day int) (Date, error) {
	d := NewDate(year, month, day)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return Date{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return d, nil
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO-8601 date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	if d.Location() != time.UTC {
		return ErrInvalidDate
	}
	h, m, s := d.Clock()
	if h != 0 || m != 0 || s != 0 || d.Nanosecond() != 0 {
		return ErrInvalidDate
	}
	return nil
}

// AddDays returns the date n days later (or earlier when n is negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON overrides the promoted time.Time encoder so dates stay YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	return d.UnmarshalText([]byte(s))
}

// NewTransaction validates the fields and returns a transaction that has not
// been stored yet.
func NewTransaction(date Date, amount float64, category, description string) (Transaction, error) {
	t := Transaction{
		Date:        date,
		Amount:      amount,
		Category:    category,
		Description: description,
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := validateAmount(t.Amount); err != nil {
		return err
	}
	return validateCategory(t.Category)
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidAmount
	}
	return nil
}

func validateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
