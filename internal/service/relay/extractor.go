package relay

import (
	"context"
	"fmt"
	"log/slog"

	"redshift-ddl/internal/ddl"
	"redshift-ddl/internal/domain"
)

// Extractor reads table DDL for a set of schemas and stores one document per
// schema under {host}/{database}/{schema}_ddl.sql in the default bucket.
type Extractor struct {
	dialect domain.Dialect
	secrets domain.SecretResolver
	store   domain.ContentStore
	bucket  string
	logger  *slog.Logger
}

// NewExtractor creates an Extractor writing to bucket in store.
func NewExtractor(
	dialect domain.Dialect,
	secrets domain.SecretResolver,
	store domain.ContentStore,
	bucket string,
	logger *slog.Logger,
) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		dialect: dialect,
		secrets: secrets,
		store:   store,
		bucket:  bucket,
		logger:  logger,
	}
}

// Extract saves the DDL of every schema and returns schema -> stored reference.
// Duplicate schema names are processed once. The first failing schema aborts
// the run; documents written before it stay in the store.
func (e *Extractor) Extract(ctx context.Context, conn domain.ConnectionDescriptor, schemas []string) (map[string]string, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	if e.bucket == "" {
		return nil, domain.ErrValidation("no DDL bucket configured")
	}
	schemas = dedupe(schemas)
	for _, s := range schemas {
		if err := ddl.ValidateSchemaName(s); err != nil {
			return nil, &domain.SchemaProcessingError{Schema: s, Err: domain.ErrValidation("%v", err)}
		}
	}

	logger := invocationLogger(ctx, e.logger, conn)
	out := make(map[string]string, len(schemas))
	if len(schemas) == 0 {
		return out, nil
	}

	sess := newLazySession(e.dialect, e.secrets, conn, logger)
	defer sess.close(ctx)

	for _, schema := range schemas {
		session, err := sess.get(ctx)
		if err != nil {
			return nil, err
		}
		uri, err := e.extractSchema(ctx, session, conn, schema)
		if err != nil {
			return nil, &domain.SchemaProcessingError{Schema: schema, Err: err}
		}
		logger.InfoContext(ctx, "schema DDL saved", "schema", schema, "uri", uri)
		out[schema] = uri
	}
	return out, nil
}

func (e *Extractor) extractSchema(ctx context.Context, session domain.WarehouseSession, conn domain.ConnectionDescriptor, schema string) (string, error) {
	rows, err := session.SchemaDDL(ctx, schema)
	if err != nil {
		return "", fmt.Errorf("query table DDL: %w", err)
	}
	ref := domain.ContentRef{
		Scheme: e.store.Scheme(),
		Bucket: e.bucket,
		Key:    ddl.StorageKey(conn.Host, conn.Database, schema),
	}
	if err := e.store.Put(ctx, ref.Bucket, ref.Key, []byte(ddl.Document(rows))); err != nil {
		return "", fmt.Errorf("store %s: %w", ref, err)
	}
	return ref.String(), nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
