// Package main is the save-ddl Lambda function. It extracts the table DDL of
// the requested schemas and stores one document per schema in DDL_BUCKET.
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
	if a.Extractor == nil {
		return fmt.Errorf("DDL_BUCKET must be set")
	}

	h := handler.New(a.Extractor, nil, logger)
	lambda.Start(h.SaveDDL)
	return nil
}
