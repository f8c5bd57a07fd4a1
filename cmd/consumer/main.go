package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"example.com/workouts/internal/config"
	"example.com/workouts/internal/consumer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.Load()); err != nil {
		log.Printf("workouts consumer: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	if !cfg.PublishEvents() {
		return errors.New("KAFKA_BROKERS is required")
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	metrics := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metrics.Shutdown(shutdownCtx)
	}()

	reader := kafka.NewReader(newReaderConfig(cfg))
	defer reader.Close()

	log.Printf("consuming %s as group %s", cfg.EventsTopic, cfg.ConsumerGroupID)
	err = consumer.NewProcessor(reader, consumer.NewPersistenceHandler(pool)).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newReaderConfig(cfg config.Config) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		GroupID:     cfg.ConsumerGroupID,
		Topic:       cfg.EventsTopic,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.FirstOffset,
	}
}
