// Command migrate runs goose commands against the embedded schema.
//
//	migrate [up|down|status|redo|reset|version] [args...]
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/FACorreiaa/family-ledger/pkg/config"
	"github.com/FACorreiaa/family-ledger/pkg/db"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	command, args := "up", []string(nil)
	if len(os.Args) > 1 {
		command, args = os.Args[1], os.Args[2:]
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	database, err := db.New(db.Config{
		DSN:             cfg.Database.DSN(),
		MaxConns:        2,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
		MaxConnIdleTime: time.Minute,
	}, logger)
	if err != nil {
		logger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, command, args...); err != nil {
		logger.Error("migration failed", slog.String("command", command), slog.Any("error", err))
		database.Close()
		os.Exit(1)
	}
}
