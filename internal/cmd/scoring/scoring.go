// Package scoring parses scoring service flags and launches the service.
package scoring

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/creaselive/crease/internal/platform/cmd"
	"github.com/creaselive/crease/internal/scoring/app"
)

// Config holds scoring command configuration.
type Config struct {
	Port        int      `env:"CREASE_SCORING_PORT" envDefault:"8080"`
	DBPath      string   `env:"CREASE_SCORING_DB_PATH"`
	RedisURL    string   `env:"CREASE_REDIS_URL"`
	Stream      string   `env:"CREASE_SCORE_STREAM"`
	CORSOrigins []string `env:"CREASE_CORS_ORIGINS" envSeparator:","`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The scoring HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the sqlite ledger (empty for in-memory)")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for live score publishing (empty disables)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the scoring HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScoring, func(ctx context.Context) error {
		return app.Run(ctx, app.Config{
			Addr:           fmt.Sprintf(":%d", cfg.Port),
			DBPath:         cfg.DBPath,
			RedisURL:       cfg.RedisURL,
			Stream:         cfg.Stream,
			AllowedOrigins: cfg.CORSOrigins,
		})
	})
}
