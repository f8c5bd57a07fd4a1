package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/workouts/internal/auth"
	"example.com/workouts/internal/config"
	"example.com/workouts/internal/domain"
	"example.com/workouts/internal/events"
	"example.com/workouts/internal/persistence/backend"
	"example.com/workouts/internal/persistence/memory"
)

func TestLogListAndSort(t *testing.T) {
	slot := memory.NewSlot()

	ride := logActivity(t, slot, "log", "cycling", "--distance", "20", "--duration", "60", "--elevation", "300", "--lat", "45", "--lng", "7")
	require.Equal(t, "cycling", ride.Kind)
	require.InDelta(t, 20.0, *ride.DerivedValue, 1e-9)

	run := logActivity(t, slot, "log", "running", "--distance", "5", "--duration", "25", "--cadence", "170", "--lat", "46", "--lng", "6")
	require.InDelta(t, 5.0, *run.DerivedValue, 1e-9)

	var items []events.Activity
	out, err := execute(t, slot, "list", "--json", "--sort", "distanceKm")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Equal(t, []string{run.ActivityID, ride.ActivityID}, feedIDs(items))

	out, err = execute(t, slot, "list", "--json", "--sort", "distanceKm", "--direction", "insertion")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Equal(t, []string{ride.ActivityID, run.ActivityID}, feedIDs(items))

	out, err = execute(t, slot, "list", "--json", "--sort", "cadenceSpm")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Equal(t, []string{run.ActivityID}, feedIDs(items))

	out, err = execute(t, slot, "list")
	require.NoError(t, err)
	require.Contains(t, out, "5.0 min/km")
	require.Contains(t, out, "20.0 km/h")

	out, err = execute(t, slot, "bounds")
	require.NoError(t, err)
	require.Contains(t, out, "lat 45.00000 .. 46.00000")
}

func TestLogRejectsInvalidValues(t *testing.T) {
	slot := memory.NewSlot()

	_, err := execute(t, slot, "log", "running", "--distance", "-5", "--duration", "25", "--cadence", "170")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = execute(t, slot, "log", "cycling", "--distance", "20", "--duration", "60")
	require.Error(t, err)

	_, err = execute(t, slot, "log", "running", "--distance", "5", "--duration", "25", "--cadence", "170", "--lat", "NaN")
	require.ErrorIs(t, err, domain.ErrValidation)

	out, err := execute(t, slot, "list")
	require.NoError(t, err)
	require.Contains(t, out, "no activities")
}

func TestEditVisitRemoveClear(t *testing.T) {
	slot := memory.NewSlot()
	run := logActivity(t, slot, "log", "running", "--distance", "5", "--duration", "25", "--cadence", "170")

	edited := decodeOne(t, mustExecute(t, slot, "edit", run.ActivityID, "--json", "--distance", "10"))
	require.InDelta(t, 2.5, *edited.DerivedValue, 1e-9)
	require.Equal(t, 25.0, edited.DurationMin)

	visited := decodeOne(t, mustExecute(t, slot, "visit", run.ActivityID, "--json"))
	require.Equal(t, 1, visited.InteractionCount)

	shown := decodeOne(t, mustExecute(t, slot, "show", run.ActivityID, "--json"))
	require.Equal(t, 1, shown.InteractionCount)
	require.Equal(t, 10.0, shown.DistanceKm)

	_, err := execute(t, slot, "clear")
	require.ErrorContains(t, err, "--yes")

	out := mustExecute(t, slot, "rm", run.ActivityID)
	require.Contains(t, out, "removed "+run.ActivityID)

	_, err = execute(t, slot, "show", run.ActivityID)
	require.ErrorIs(t, err, domain.ErrActivityNotFound)

	logActivity(t, slot, "log", "running", "--distance", "5", "--duration", "25", "--cadence", "170")
	require.Contains(t, mustExecute(t, slot, "clear", "--yes"), "removed 1 activities")

	_, err = execute(t, slot, "bounds")
	require.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestTokenCommandMintsParsableToken(t *testing.T) {
	out := mustExecute(t, memory.NewSlot(), "token", "--subject", "alice", "--scope", auth.ScopeWorkoutsRead)

	claims, err := auth.Parse(strings.TrimSpace(out), auth.Config{Secret: "cli-secret", Issuer: "cli-test"})
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.True(t, claims.HasScope(auth.ScopeWorkoutsRead))
	require.False(t, claims.HasScope(auth.ScopeWorkoutsWrite))
}

func execute(t *testing.T, slot *memory.Slot, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	a.loadCfg = func() config.Config {
		return config.Config{
			StorageBackend: config.BackendMemory,
			SlotKey:        "workouts",
			JWTSecret:      "cli-secret",
			JWTIssuer:      "cli-test",
		}
	}
	a.openStore = func(context.Context, config.Config, *log.Logger) (backend.Opened, error) {
		return backend.Opened{Slot: slot}, nil
	}

	var out bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, slot *memory.Slot, args ...string) string {
	t.Helper()
	out, err := execute(t, slot, args...)
	require.NoError(t, err, out)
	return out
}

func logActivity(t *testing.T, slot *memory.Slot, args ...string) events.Activity {
	t.Helper()
	return decodeOne(t, mustExecute(t, slot, append(args, "--json")...))
}

func decodeOne(t *testing.T, out string) events.Activity {
	t.Helper()
	var item events.Activity
	require.NoError(t, json.Unmarshal([]byte(out), &item), out)
	return item
}

func feedIDs(items []events.Activity) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ActivityID
	}
	return out
}
