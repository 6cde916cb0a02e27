package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestStoreUpsertRemoveList(t *testing.T) {
	ctx := context.Background()
	s := New()

	b := core.Transaction{ID: 2, Date: core.NewDate(2023, 10, 2), Amount: 5, Category: "B"}
	a := core.Transaction{ID: 1, Date: core.NewDate(2023, 10, 1), Amount: -5, Category: "A"}
	require.NoError(t, s.Upsert(ctx, b))
	require.NoError(t, s.Upsert(ctx, a))

	a.Description = "edited"
	require.NoError(t, s.Upsert(ctx, a))

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Transaction{a, b}, got)

	require.NoError(t, s.Remove(ctx, 1))
	require.NoError(t, s.Remove(ctx, 1))
	got, _ = s.List(ctx)
	assert.Equal(t, []core.Transaction{b}, got)

	assert.Error(t, s.Upsert(ctx, core.Transaction{Category: "x"}))
}
