// Package app wires the broadcaster runtime: the Redis stream consumer, the
// websocket hub, and the HTTP lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/creaselive/crease/internal/broadcast"
)

const shutdownTimeout = 10 * time.Second

// Config holds broadcaster runtime configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8081".
	Addr string
	// RedisURL locates the stream the scoring service publishes to.
	RedisURL string
	// Stream names the Redis stream for score updates.
	Stream string
	// Group is the consumer group name.
	Group string
	// ConsumerID identifies this instance within the group.
	ConsumerID string
}

// Run serves websocket score feeds until the context ends.
func Run(ctx context.Context, cfg Config) error {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	hub := broadcast.NewHub()
	go hub.Run(ctx)

	consumer := broadcast.NewConsumer(client, hub, cfg.Stream, cfg.Group, cfg.ConsumerID)
	consumerErr := make(chan error, 1)
	go func() { consumerErr <- consumer.Start(ctx) }()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", broadcast.ServeWS(ctx, hub))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","clients":%d}`, hub.ClientCount())
	})

	server := &http.Server{Addr: cfg.Addr, Handler: otelhttp.NewHandler(mux, "broadcast.http")}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("broadcaster listening at %s", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-consumerErr:
		return err
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
