// Package app wires configuration into the relay services: AWS clients,
// content stores, the secret resolver and the warehouse dialect.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"redshift-ddl/internal/config"
	"redshift-ddl/internal/contentstore"
	"redshift-ddl/internal/domain"
	"redshift-ddl/internal/handler"
	"redshift-ddl/internal/secrets"
	"redshift-ddl/internal/service/relay"
	"redshift-ddl/internal/warehouse"
)

// Deps holds what the binaries must provide.
type Deps struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// App holds the fully-wired relay.
type App struct {
	// Extractor is nil when DDL_BUCKET is not configured.
	Extractor *relay.Extractor
	Replayer  *relay.Replayer
	Stores    *contentstore.Router
	Dialect   domain.Dialect

	closers []func() error
}

// New builds the content stores, secret resolver and dialect from deps.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{}
	stores := []domain.ContentStore{contentstore.NewS3Store(newS3Client(cfg, awsCfg))}

	if cfg.DDLStoreScheme == "gs" || cfg.GCSCredentialsFile != "" {
		gcs, err := contentstore.NewGCSStore(ctx, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, gcs.Close)
		stores = append(stores, gcs)
	}
	if cfg.HasAzure() {
		az, err := contentstore.NewAzureStoreFromSharedKey(cfg.AzureAccount, cfg.AzureKey)
		if err != nil {
			return nil, err
		}
		stores = append(stores, az)
	}
	a.Stores = contentstore.NewRouter(stores...)

	a.Dialect, err = warehouse.NewDialect(cfg.WarehouseDialect, warehouse.Options{
		SSLMode:   cfg.WarehouseSSLMode,
		DuckDBDir: cfg.DuckDBDir,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	resolver := secrets.NewRouter(secrets.NewSecretsManagerResolver(awsCfg, logger))

	if cfg.DDLBucket != "" {
		store, err := a.Stores.Store(cfg.DDLStoreScheme)
		if err != nil {
			return nil, err
		}
		a.Extractor = relay.NewExtractor(a.Dialect, resolver, store, cfg.DDLBucket, logger)
	}
	a.Replayer = relay.NewReplayer(a.Dialect, resolver, a.Stores, logger)

	logger.Info("relay configured",
		"dialect", a.Dialect.Name(),
		"schemes", a.Stores.Schemes(),
		"bucket", cfg.DDLBucket,
		"extract_enabled", a.Extractor != nil,
	)
	return a, nil
}

// ExtractService returns the extractor as an interface value, or nil when
// extraction is not configured.
func (a *App) ExtractService() handler.Extractor {
	if a.Extractor == nil {
		return nil
	}
	return a.Extractor
}

// Close releases clients that hold connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return awsCfg, nil
}

// newS3Client prefers static S3-compatible credentials and falls back to the
// default credential chain (the Lambda execution role).
func newS3Client(cfg *config.Config, awsCfg aws.Config) *s3.Client {
	if cfg.HasStaticS3Credentials() && cfg.S3Endpoint != nil {
		return contentstore.NewS3ClientStatic(contentstore.S3StaticOptions{
			Endpoint: *cfg.S3Endpoint,
			Region:   awsCfg.Region,
			KeyID:    *cfg.S3KeyID,
			Secret:   *cfg.S3Secret,
		})
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.Retryer = aws.NopRetryer{}
		if cfg.HasStaticS3Credentials() {
			o.Credentials = credentials.NewStaticCredentialsProvider(*cfg.S3KeyID, *cfg.S3Secret, "")
		}
		if cfg.S3Endpoint != nil {
			o.BaseEndpoint = cfg.S3Endpoint
			o.UsePathStyle = true
		}
	})
}
