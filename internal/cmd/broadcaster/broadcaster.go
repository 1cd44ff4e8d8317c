// Package broadcaster parses broadcaster flags and launches the service.
package broadcaster

import (
	"context"
	"flag"
	"fmt"

	"github.com/creaselive/crease/internal/broadcast/app"
	entrypoint "github.com/creaselive/crease/internal/platform/cmd"
)

// Config holds broadcaster command configuration.
type Config struct {
	Port       int    `env:"CREASE_BROADCASTER_PORT" envDefault:"8081"`
	RedisURL   string `env:"CREASE_REDIS_URL" envDefault:"redis://localhost:6379"`
	Stream     string `env:"CREASE_SCORE_STREAM"`
	Group      string `env:"CREASE_BROADCASTER_GROUP" envDefault:"broadcaster"`
	ConsumerID string `env:"CREASE_BROADCASTER_CONSUMER_ID" envDefault:"broadcaster-1"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The broadcaster HTTP server port")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for the score update stream")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the websocket broadcaster service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBroadcaster, func(ctx context.Context) error {
		return app.Run(ctx, app.Config{
			Addr:       fmt.Sprintf(":%d", cfg.Port),
			RedisURL:   cfg.RedisURL,
			Stream:     cfg.Stream,
			Group:      cfg.Group,
			ConsumerID: cfg.ConsumerID,
		})
	})
}
