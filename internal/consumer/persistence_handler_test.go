package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"example.com/workouts/internal/events"
)

type recordingExecer struct {
	args [][]any
	err  error
}

func (e *recordingExecer) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	e.args = append(e.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), e.err
}

func TestPersistenceHandlerNullsActivityForClears(t *testing.T) {
	db := &recordingExecer{}
	h := &PersistenceHandler{db: db}

	require.NoError(t, h.Handle(context.Background(), Message{
		EventType: events.TypeRemoved, Key: "act-1", Topic: "workout_events", Offset: 3,
		Payload: json.RawMessage(`{}`),
	}))
	require.NoError(t, h.Handle(context.Background(), Message{
		EventType: events.TypeCleared, Key: "workouts", Topic: "workout_events", Offset: 4,
		Payload: json.RawMessage(`{}`),
	}))

	require.Len(t, db.args, 2)
	id, ok := db.args[0][1].(*string)
	require.True(t, ok)
	require.Equal(t, "act-1", *id)
	require.Nil(t, db.args[1][1])
}

func TestPersistenceHandlerWrapsExecErrors(t *testing.T) {
	h := &PersistenceHandler{db: &recordingExecer{err: errors.New("connection reset")}}

	err := h.Handle(context.Background(), Message{EventType: events.TypeLogged, Key: "act-1", Topic: "workout_events", Offset: 9})
	require.ErrorContains(t, err, "workout_events@9")
	require.ErrorContains(t, err, "connection reset")
}
