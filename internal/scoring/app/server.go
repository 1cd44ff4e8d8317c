// Package app wires the scoring runtime: storage, engine, Redis publisher,
// and the HTTP lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/creaselive/crease/internal/broadcast"
	"github.com/creaselive/crease/internal/scoring/api/rest"
	"github.com/creaselive/crease/internal/scoring/engine"
	"github.com/creaselive/crease/internal/scoring/storage"
	"github.com/creaselive/crease/internal/scoring/storage/memory"
	scoringsqlite "github.com/creaselive/crease/internal/scoring/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

// Config holds scoring service runtime configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string
	// DBPath locates the sqlite ledger; empty selects the in-memory store.
	DBPath string
	// RedisURL enables live score publishing when set.
	RedisURL string
	// Stream names the Redis stream for score updates.
	Stream string
	// AllowedOrigins configures CORS for browser scorers.
	AllowedOrigins []string
}

// Run serves the scoring API until the context ends.
func Run(ctx context.Context, cfg Config) error {
	store, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	var notifier engine.Notifier
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		defer func() { _ = client.Close() }()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		notifier = broadcast.NewPublisher(client, cfg.Stream)
	}

	eng := engine.New(store, notifier)
	router := rest.NewRouter(eng, store, rest.RouterOptions{AllowedOrigins: cfg.AllowedOrigins})

	server := &http.Server{Addr: cfg.Addr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("scoring api listening at %s", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func openStore(dbPath string) (storage.Store, error) {
	if dbPath == "" {
		log.Print("no db path configured, using in-memory store")
		return memory.New(), nil
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	store, err := scoringsqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open scoring store: %w", err)
	}
	return store, nil
}
