//go:build integration

package consumer

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaContainer "github.com/testcontainers/testcontainers-go/modules/kafka"

	"example.com/workouts/internal/domain"
	"example.com/workouts/internal/events"
	"example.com/workouts/internal/outbox"
	"example.com/workouts/internal/persistence"
	"example.com/workouts/internal/persistence/memory"
	"example.com/workouts/internal/service"
)

func TestServiceEventsReachProcessor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	kafkaC, err := kafkaContainer.RunContainer(ctx, testcontainers.WithEnv(map[string]string{
		"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kafkaC.Terminate(context.Background()) })

	brokers, err := kafkaC.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	topic := "workout_events"
	conn, err := kafka.Dial("tcp", brokers[0])
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))

	writer := outbox.NewWriter(outbox.DefaultWriterConfig(brokers))
	defer writer.Close()

	svc := service.New(persistence.NewAdapter(memory.NewSlot()),
		service.WithPublisher(outbox.NewPublisher(writer, topic)))

	ride, err := svc.Log(ctx, domain.CreateRequest{
		Kind:           domain.KindElevation,
		Position:       domain.Position{Lat: 46.5, Lng: 7.9},
		DistanceKm:     20,
		DurationMin:    60,
		ElevationGainM: 450,
	})
	require.NoError(t, err)
	_, err = svc.Visit(ctx, ride.ID)
	require.NoError(t, err)
	_, err = svc.Clear(ctx)
	require.NoError(t, err)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     "workouts-integration",
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	defer reader.Close()

	var mu sync.Mutex
	var received []Message
	proc := NewProcessor(reader, HandlerFunc(func(_ context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, msg)
		return nil
	}))

	consumerCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		_ = proc.Run(consumerCtx)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 3
	}, 60*time.Second, 500*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, events.TypeLogged, received[0].EventType)
	require.Equal(t, ride.ID, received[0].ActivityID())
	require.Equal(t, events.TypeUpdated, received[1].EventType)
	require.Equal(t, events.TypeCleared, received[2].EventType)

	var updated events.ActivityChanged
	require.NoError(t, json.Unmarshal(received[1].Payload, &updated))
	require.Equal(t, 1, updated.Activity.InteractionCount)
	require.Equal(t, "speedKmPerH", updated.Activity.DerivedMetric)
	require.NotNil(t, updated.Activity.DerivedValue)
	require.InDelta(t, 20.0, *updated.Activity.DerivedValue, 1e-9)

	var cleared events.LogCleared
	require.NoError(t, json.Unmarshal(received[2].Payload, &cleared))
	require.Equal(t, 1, cleared.Removed)
}
