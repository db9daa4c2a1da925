// Package main is the execute-ddl Lambda function. It executes stored DDL documents
// against the target warehouse, creating each schema first.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"redshift-ddl/internal/app"
	"redshift-ddl/internal/config"
	"redshift-ddl/internal/handler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	a, err := app.New(context.Background(), app.Deps{Cfg: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	h := handler.New(nil, a.Replayer, logger)
	lambda.Start(h.ExecuteDDL)
	return nil
}
