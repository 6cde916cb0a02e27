package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthWindow(t *testing.T) {
	cases := []struct {
		m          Month
		start, nxt string
	}{
		{Month{2023, 10}, "2023-10-01", "2023-11-01"},
		{Month{2023, 12}, "2023-12-01", "2024-01-01"},
		{Month{2024, 2}, "2024-02-01", "2024-03-01"},
	}
	for _, tc := range cases {
		start, next := tc.m.Window()
		assert.Equal(t, tc.start, start.String())
		assert.Equal(t, tc.nxt, next.String())
	}
}

func TestMonthFilterExcludesFirstOfNextMonth(t *testing.T) {
	f := Month{2023, 10}.Filter()

	assert.True(t, f.Matches(Transaction{Date: NewDate(2023, 10, 1)}))
	assert.True(t, f.Matches(Transaction{Date: NewDate(2023, 10, 31)}))
	assert.False(t, f.Matches(Transaction{Date: NewDate(2023, 11, 1)}))
	assert.False(t, f.Matches(Transaction{Date: NewDate(2023, 9, 30)}))

	dec := Month{2023, 12}.Filter()
	assert.True(t, dec.Matches(Transaction{Date: NewDate(2023, 12, 31)}))
	assert.False(t, dec.Matches(Transaction{Date: NewDate(2024, 1, 1)}))
}

func TestMonthOr(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, Month{2026, 3}, Month{}.Or(now))
	assert.Equal(t, Month{2026, 3}, Month{Year: 2020}.Or(now))
	assert.Equal(t, Month{2020, 5}, Month{2020, 5}.Or(now))
}

func TestNewMonth(t *testing.T) {
	m, err := NewMonth(2023, 12)
	require.NoError(t, err)
	assert.Equal(t, "2023-12", m.String())

	_, err = NewMonth(2023, 13)
	assert.ErrorIs(t, err, ErrInvalidMonth)
	_, err = NewMonth(2023, 0)
	assert.ErrorIs(t, err, ErrInvalidMonth)
	_, err = NewMonth(0, 1)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}
