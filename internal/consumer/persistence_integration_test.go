//go:build integration

package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/workouts/internal/events"
	"example.com/workouts/internal/testsupport"
)

func TestPersistenceHandlerStoresEvent(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(ctx, t)
	handler := NewPersistenceHandler(pool)

	payload := json.RawMessage(`{"slot":"workouts","activity":{"activity_id":"abc","kind":"cycling"}}`)
	msg := Message{
		EventType: events.TypeLogged,
		Key:       "abc",
		Topic:     "workout_events",
		Partition: 0,
		Offset:    5,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	require.NoError(t, handler.Handle(ctx, msg))
	// Redelivery of the same offset is ignored.
	require.NoError(t, handler.Handle(ctx, msg))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM workout_event_log`).Scan(&count))
	require.Equal(t, 1, count)

	var storedPayload []byte
	var activityID *string
	err := pool.QueryRow(ctx, `SELECT payload, activity_id FROM workout_event_log LIMIT 1`).Scan(&storedPayload, &activityID)
	require.NoError(t, err)
	require.JSONEq(t, string(payload), string(storedPayload))
	require.NotNil(t, activityID)
	require.Equal(t, "abc", *activityID)

	cleared := Message{
		EventType: events.TypeCleared,
		Key:       "workouts",
		Topic:     "workout_events",
		Offset:    6,
		Payload:   json.RawMessage(`{"slot":"workouts","removed":1}`),
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, handler.Handle(ctx, cleared))

	err = pool.QueryRow(ctx, `SELECT activity_id FROM workout_event_log WHERE record_offset = 6`).Scan(&activityID)
	require.NoError(t, err)
	require.Nil(t, activityID)
}
