// Package relay implements the two halves of the DDL workflow: the Extractor
// saves per-schema table DDL to a content store and the Replayer executes
// stored documents against a target warehouse.
package relay

import (
	"context"
	"errors"
	"log/slog"

	"redshift-ddl/internal/domain"
)

// lazySession opens one warehouse session on first use and closes it once.
type lazySession struct {
	dialect domain.Dialect
	secrets domain.SecretResolver
	conn    domain.ConnectionDescriptor
	logger  *slog.Logger

	session domain.WarehouseSession
}

func newLazySession(dialect domain.Dialect, secrets domain.SecretResolver, conn domain.ConnectionDescriptor, logger *slog.Logger) *lazySession {
	return &lazySession{dialect: dialect, secrets: secrets, conn: conn, logger: logger}
}

// get returns the open session, resolving the credential and connecting on
// the first call.
func (l *lazySession) get(ctx context.Context) (domain.WarehouseSession, error) {
	if l.session != nil {
		return l.session, nil
	}

	var password string
	if l.conn.CredentialRef != "" {
		if l.secrets == nil {
			return nil, &domain.SecretUnavailableError{Ref: l.conn.CredentialRef, Err: errors.New("no secret resolver configured")}
		}
		p, err := l.secrets.Resolve(ctx, l.conn.CredentialRef)
		if err != nil {
			var su *domain.SecretUnavailableError
			if !errors.As(err, &su) {
				err = &domain.SecretUnavailableError{Ref: l.conn.CredentialRef, Err: err}
			}
			return nil, err
		}
		password = p
	}

	session, err := l.dialect.Open(ctx, l.conn, password)
	if err != nil {
		var ce *domain.ConnectionError
		if !errors.As(err, &ce) {
			err = &domain.ConnectionError{Host: l.conn.Host, Port: l.conn.Port, Database: l.conn.Database, Err: err}
		}
		return nil, err
	}
	l.logger.DebugContext(ctx, "warehouse session opened", "dialect", l.dialect.Name())
	l.session = session
	return session, nil
}

// close releases the session if one was opened.
func (l *lazySession) close(ctx context.Context) {
	if l.session == nil {
		return
	}
	// The invocation context may already be cancelled; closing must still run.
	if err := l.session.Close(context.WithoutCancel(ctx)); err != nil {
		l.logger.WarnContext(ctx, "closing warehouse session failed", "error", err)
	}
	l.session = nil
}

// invocationLogger attaches the connection endpoint and invocation ID.
func invocationLogger(ctx context.Context, logger *slog.Logger, conn domain.ConnectionDescriptor) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	l := logger.With("host", conn.Host, "port", conn.Port, "db", conn.Database, "user", conn.User)
	if id := domain.InvocationIDFromContext(ctx); id != "" {
		l = l.With("request_id", id)
	}
	return l
}
