package consumer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertEventLog = `
INSERT INTO workout_event_log (event_type, activity_id, topic, partition, record_offset, payload, received_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (topic, partition, record_offset) DO NOTHING`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PersistenceHandler appends consumed events to workout_event_log. A
// redelivered record hits the (topic, partition, record_offset) unique index
// and is ignored.
type PersistenceHandler struct {
	db execer
}

// NewPersistenceHandler constructs a handler backed by pool.
func NewPersistenceHandler(pool *pgxpool.Pool) *PersistenceHandler {
	return &PersistenceHandler{db: pool}
}

// Handle stores msg. Clear events have no activity and store a NULL id.
func (h *PersistenceHandler) Handle(ctx context.Context, msg Message) error {
	var activityID *string
	if id := msg.ActivityID(); id != "" {
		activityID = &id
	}

	_, err := h.db.Exec(ctx, insertEventLog,
		msg.EventType, activityID, msg.Topic, msg.Partition, msg.Offset, []byte(msg.Payload), msg.Timestamp)
	if err != nil {
		return fmt.Errorf("append %s@%d to event log: %w", msg.Topic, msg.Offset, err)
	}
	return nil
}
