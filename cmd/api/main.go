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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/workouts/internal/api"
	"example.com/workouts/internal/auth"
	"example.com/workouts/internal/config"
	"example.com/workouts/internal/events"
	"example.com/workouts/internal/outbox"
	"example.com/workouts/internal/persistence"
	"example.com/workouts/internal/persistence/backend"
	"example.com/workouts/internal/service"
	httptransport "example.com/workouts/internal/transport/http"
)

const shutdownGrace = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.Load()); err != nil {
		log.Printf("workouts api: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	store, err := backend.Open(ctx, cfg, log.New(log.Writer(), "[badger] ", log.LstdFlags))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("storage close error: %v", err)
		}
	}()

	publisher, closePublisher := newPublisher(cfg)
	defer closePublisher()

	svc := service.New(persistence.NewAdapter(store.Slot),
		service.WithPublisher(publisher),
		service.WithSlotName(cfg.SlotKey))
	log.Printf("restored %d activities from %s slot %q", svc.Restore(ctx), cfg.StorageBackend, cfg.SlotKey)

	mux := http.NewServeMux()
	api.NewHandler(svc).RegisterRoutes(mux)

	authn := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	authn.Disabled = cfg.AuthDisabled
	if cfg.AuthDisabled {
		log.Println("authentication disabled; every request acts as the local user")
	}

	servers := []*http.Server{
		httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress),
			httptransport.Chain(mux,
				httptransport.RequestLogger(log.Default()),
				httptransport.CORS("http://localhost:5173"),
				authn.Wrap,
			)),
		{Addr: cfg.MetricsAddress, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second},
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Printf("listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(srv)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		log.Println("shutdown requested")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown %s: %v", srv.Addr, err)
		}
	}
	return serveErr
}

// newPublisher returns the Kafka publisher when brokers are configured and a
// no-op otherwise.
func newPublisher(cfg config.Config) (events.Publisher, func()) {
	if !cfg.PublishEvents() {
		return events.NoopPublisher{}, func() {}
	}
	writer := outbox.NewWriter(outbox.DefaultWriterConfig(cfg.KafkaBrokers))
	log.Printf("publishing workout events to %s on %v", cfg.EventsTopic, cfg.KafkaBrokers)
	return outbox.NewPublisher(writer, cfg.EventsTopic), func() {
		if err := writer.Close(); err != nil {
			log.Printf("kafka writer close error: %v", err)
		}
	}
}
