package relay

import (
	"context"
	"fmt"
	"log/slog"

	"redshift-ddl/internal/ddl"
	"redshift-ddl/internal/domain"
)

// ContentResolver maps a stored reference to its parsed form and the store
// that serves it. *contentstore.Router implements it.
type ContentResolver interface {
	Resolve(raw string) (domain.ContentRef, domain.ContentStore, error)
}

// Replayer executes stored DDL documents against a target warehouse.
type Replayer struct {
	dialect domain.Dialect
	secrets domain.SecretResolver
	stores  ContentResolver
	logger  *slog.Logger
}

// NewReplayer creates a Replayer.
func NewReplayer(
	dialect domain.Dialect,
	secrets domain.SecretResolver,
	stores ContentResolver,
	logger *slog.Logger,
) *Replayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replayer{
		dialect: dialect,
		secrets: secrets,
		stores:  stores,
		logger:  logger,
	}
}

// Execute replays refs in order. For each reference the target schema is
// derived from the key, created if missing and the document executed in its
// own transaction. The first failure stops the run; earlier references stay
// committed.
func (r *Replayer) Execute(ctx context.Context, conn domain.ConnectionDescriptor, refs []string) (domain.SuccessMarker, error) {
	if err := conn.Validate(); err != nil {
		return domain.SuccessMarker{}, err
	}
	logger := invocationLogger(ctx, r.logger, conn)

	sess := newLazySession(r.dialect, r.secrets, conn, logger)
	defer sess.close(ctx)

	for _, raw := range refs {
		if err := r.replay(ctx, sess, raw, logger); err != nil {
			return domain.SuccessMarker{}, err
		}
	}
	return domain.Success, nil
}

func (r *Replayer) replay(ctx context.Context, sess *lazySession, raw string, logger *slog.Logger) error {
	ref, store, err := r.stores.Resolve(raw)
	if err != nil {
		return err
	}
	schema, err := ddl.SchemaFromKey(ref.Key)
	if err != nil {
		return err
	}
	if err := ddl.ValidateSchemaName(schema); err != nil {
		return &domain.InvalidReferenceError{Ref: raw, Reason: err.Error()}
	}

	body, err := store.Get(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", raw, err)
	}

	session, err := sess.get(ctx)
	if err != nil {
		return err
	}
	if err := session.EnsureSchema(ctx, schema); err != nil {
		return &domain.SchemaCreateError{Schema: schema, Err: err}
	}
	if err := session.ExecDDL(ctx, string(body)); err != nil {
		return &domain.DdlExecutionError{Ref: raw, Schema: schema, Err: err}
	}
	logger.InfoContext(ctx, "DDL replayed", "uri", raw, "schema", schema, "bytes", len(body))
	return nil
}
