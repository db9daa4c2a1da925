// Package cli implements ddlctl, the operator command line for saving and
// replaying warehouse DDL.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"redshift-ddl/internal/app"
	"redshift-ddl/internal/config"
	"redshift-ddl/internal/handler"
)

var (
	version = "dev"
	commit  = "none"
)

// Services is what the commands need from the wired application.
type Services struct {
	Extractor handler.Extractor // nil when extraction is not configured
	Replayer  handler.Replayer
	Close     func() error
}

// ServiceFactory builds Services from configuration.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error)

// DefaultFactory wires the real AWS, storage and warehouse clients.
func DefaultFactory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	a, err := app.New(ctx, app.Deps{Cfg: cfg, Logger: logger})
	if err != nil {
		return nil, err
	}
	return &Services{Extractor: a.ExtractService(), Replayer: a.Replayer, Close: a.Close}, nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(DefaultFactory, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		printError(rootCmd.OutOrStdout(), os.Stderr, output, err)
		return 1
	}
	return 0
}

// runtime is resolved once per invocation in PersistentPreRunE.
type runtime struct {
	factory ServiceFactory
	logOut  io.Writer

	cfg    *config.Config
	logger *slog.Logger
}

// services builds the application for commands that talk to AWS or a warehouse.
func (r *runtime) services(ctx context.Context) (*Services, error) {
	return r.factory(ctx, r.cfg, r.logger)
}

func newRootCmd(factory ServiceFactory, logOut io.Writer) *cobra.Command {
	var (
		output  string
		envFile string
	)
	rt := &runtime{factory: factory, logOut: logOut}

	rootCmd := &cobra.Command{
		Use:           "ddlctl",
		Short:         "Save and replay warehouse DDL",
		Long:          "Extract per-schema table DDL to object storage and execute stored DDL against a target warehouse.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			rt.cfg = cfg
			rt.logger = slog.New(slog.NewJSONHandler(rt.logOut, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			for _, w := range cfg.Warnings {
				rt.logger.Warn(w)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file loaded before the environment is read")

	rootCmd.AddCommand(newExtractCmd(rt))
	rootCmd.AddCommand(newExecuteCmd(rt))
	rootCmd.AddCommand(newServeCmd(rt))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func printError(stdout, stderr io.Writer, output string, err error) {
	if output == "json" {
		_, code := handler.Classify(err)
		_ = printJSON(stdout, map[string]string{"error": err.Error(), "code": code})
		return
	}
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
}

// closeServices runs the Close hook, keeping the first error.
func closeServices(svc *Services, errp *error) {
	if svc.Close == nil {
		return
	}
	if err := svc.Close(); err != nil && *errp == nil {
		*errp = err
	}
}

var errExtractDisabled = errors.New("extraction is not configured: set DDL_BUCKET")
