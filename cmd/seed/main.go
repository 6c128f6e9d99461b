package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"userapi/internal/config"
	"userapi/internal/repository/postgres"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	runner := NewRunner(RunnerOpts{
		Config: config.Load(),
		Users:  postgres.NewUserRepository(),
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "seed",
		Usage:    "Load users from CSV snapshots and dump the user table back out",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("seed failed: %v", err)
	}
}
