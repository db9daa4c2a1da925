package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"redshift-ddl/internal/api"
	"redshift-ddl/internal/middleware"
	"redshift-ddl/internal/schedule"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /extract and POST /execute over HTTP and run scheduled extractions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			cfg, logger := rt.cfg, rt.logger

			svc, err := rt.services(ctx)
			if err != nil {
				return err
			}
			defer closeServices(svc, &err)

			var scheduler *schedule.Scheduler
			if cfg.ScheduleFile != "" {
				jobs, err := schedule.LoadFile(cfg.ScheduleFile)
				if err != nil {
					return err
				}
				if svc.Extractor == nil {
					return errExtractDisabled
				}
				scheduler = schedule.NewScheduler(svc.Extractor, jobs, logger)
			}

			g, ctx := errgroup.WithContext(ctx)
			srv := &http.Server{
				Addr: cfg.ListenAddr,
				Handler: api.NewRouter(ctx, api.Config{
					Extractor: svc.Extractor,
					Replayer:  svc.Replayer,
					RateLimit: middleware.RateLimitConfig{
						RequestsPerSecond: cfg.RateLimitRPS,
						Burst:             cfg.RateLimitBurst,
					},
					Logger: logger,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			if scheduler != nil {
				if err := scheduler.Start(ctx); err != nil {
					return err
				}
				g.Go(func() error {
					<-ctx.Done()
					scheduler.Stop()
					return nil
				})
			}
			g.Go(func() error {
				logger.Info("HTTP server listening", "addr", cfg.ListenAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				logger.Info("shutting down HTTP server")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}
