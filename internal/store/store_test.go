package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/workouts/internal/domain"
)

func activity(t *testing.T, id string, distance float64) domain.Activity {
	t.Helper()
	f := domain.DefaultFactory
	f.NewID = func() string { return id }
	a, err := f.NewDistanceActivity(domain.Position{Lat: 1, Lng: 1}, distance, 30, 170)
	require.NoError(t, err)
	return a
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(activity(t, "a", 3)))
	require.NoError(t, s.Add(activity(t, "b", 1)))
	require.NoError(t, s.Add(activity(t, "c", 2)))

	list := s.List()
	require.Len(t, list, 3)
	require.Equal(t, "a", list[0].ID)
	require.Equal(t, "b", list[1].ID)
	require.Equal(t, "c", list[2].ID)
}

func TestZeroValueStoreIsUsable(t *testing.T) {
	var s Store
	_, ok := s.FindByID("missing")
	require.False(t, ok)

	require.NoError(t, s.Add(activity(t, "a", 5)))
	require.ErrorIs(t, s.Add(activity(t, "a", 5)), domain.ErrDuplicateID)
	require.Equal(t, 1, s.Len())
}

func TestAddRejectsDuplicateID(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(activity(t, "a", 3)))
	require.ErrorIs(t, s.Add(activity(t, "a", 4)), domain.ErrDuplicateID)
	require.Equal(t, 1, s.Len())
}

func TestRemoveByIDUnknownLeavesCollectionUnchanged(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(activity(t, "a", 3)))
	require.NoError(t, s.Add(activity(t, "b", 1)))
	before := s.List()

	_, ok := s.RemoveByID("missing")
	require.False(t, ok)
	require.Equal(t, before, s.List())
}

func TestRemoveByIDRemovesExactlyOne(t *testing.T) {
	s := New()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Add(activity(t, id, 2)))
	}
	before := s.List()

	removed, ok := s.RemoveByID("b")
	require.True(t, ok)
	require.Equal(t, "b", removed.ID)

	after := s.List()
	require.Len(t, after, 2)
	require.Equal(t, before[0], after[0])
	require.Equal(t, before[2], after[1])

	got, ok := s.FindByID("c")
	require.True(t, ok)
	require.Equal(t, before[2], got)
}

func TestListReturnsCopies(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(activity(t, "a", 3)))

	list := s.List()
	list[0].DistanceKm = 99
	list[0].Distance.CadenceSpm = 1

	got, _ := s.FindByID("a")
	require.Equal(t, 3.0, got.DistanceKm)
	require.Equal(t, 170.0, got.Distance.CadenceSpm)
}

func TestUpdateMutatesInPlace(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(activity(t, "a", 3)))

	updated, ok := s.Update("a", domain.MarkVisited)
	require.True(t, ok)
	require.Equal(t, 1, updated.InteractionCount)

	_, ok = s.Update("nope", domain.MarkVisited)
	require.False(t, ok)
}

func TestReplaceDropsDuplicates(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(activity(t, "old", 1)))

	dropped := s.Replace([]domain.Activity{activity(t, "a", 1), activity(t, "a", 2), activity(t, "b", 3)})
	require.Equal(t, 1, dropped)
	require.Equal(t, 2, s.Len())
	_, ok := s.FindByID("old")
	require.False(t, ok)

	s.Clear()
	require.Zero(t, s.Len())
}
