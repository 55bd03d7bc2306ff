// Command migrate applies, resets or reports the Postgres schema migrations.
//
// Usage:
//
//	migrate [up|reset|status]
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/cleanexit/cleanexit/internal/repository/migrations"
)

type migrateConfig struct {
	DatabaseURL string        `env:"DATABASE_URL,required"`
	Timeout     time.Duration `env:"MIGRATE_TIMEOUT" envDefault:"2m"`
}

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate [up|reset|status]")
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(command); err != nil {
		logger.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}
	logger.Info("migration finished", "command", command)
}

func run(command string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	var cfg migrateConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	switch command {
	case "up":
		return migrations.Up(ctx, db)
	case "reset":
		return migrations.Reset(ctx, db)
	case "status":
		return migrations.Status(ctx, db)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
