//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/workouts/internal/domain"
	"example.com/workouts/internal/persistence"
	"example.com/workouts/internal/testsupport"
)

func TestSlotRoundTripAndIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(testsupport.StartPostgres(ctx, t))
	slot := repo.Slot("workouts")

	_, err := slot.Read(ctx)
	require.ErrorIs(t, err, persistence.ErrSlotEmpty)

	run, err := domain.NewDistanceActivity(domain.Position{Lat: 48.85, Lng: 2.35}, 5, 25, 180)
	require.NoError(t, err)
	ride, err := domain.NewElevationActivity(domain.Position{Lat: 48.86, Lng: 2.34}, 20, 60, 150)
	require.NoError(t, err)
	in := []domain.Activity{run, ride}

	adapter := persistence.NewAdapter(slot)
	require.NoError(t, adapter.Save(ctx, in))
	// A second save upserts the same row.
	require.NoError(t, adapter.Save(ctx, in))
	require.Equal(t, in, adapter.Load(ctx))

	other := persistence.NewAdapter(repo.Slot("someone-else"))
	require.Empty(t, other.Load(ctx))

	keys, err := repo.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"workouts"}, keys)

	require.NoError(t, adapter.Clear(ctx))
	require.Empty(t, adapter.Load(ctx))

	// Deleting an absent slot is not an error.
	require.NoError(t, adapter.Clear(ctx))
}
