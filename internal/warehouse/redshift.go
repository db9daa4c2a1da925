// Package warehouse opens sessions against the warehouses DDL is extracted
// from and replayed into.
package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"redshift-ddl/internal/ddl"
	"redshift-ddl/internal/domain"
)

// Compile-time checks.
var (
	_ domain.Dialect          = (*Redshift)(nil)
	_ domain.WarehouseSession = (*pgSession)(nil)
)

// RedshiftOptions configures the Redshift/PostgreSQL dialect.
type RedshiftOptions struct {
	// Name reported by the dialect, "redshift" or "postgres".
	Name string
	// SSLMode is passed through as the libpq sslmode parameter (default "require").
	SSLMode string
	// ConnectTimeout bounds the connection handshake (default 10s).
	ConnectTimeout time.Duration
	// SimpleProtocol sends every statement with the simple query protocol.
	// Redshift does not support all of pgx's extended-protocol features.
	SimpleProtocol bool
	// DefaultPort is used when the descriptor has no port (default 5432).
	DefaultPort int
	// Query is the metadata query run by SchemaDDL (default the PostgreSQL one).
	Query  string
	Logger *slog.Logger
}

// Redshift speaks the PostgreSQL wire protocol through pgx.
type Redshift struct {
	opts RedshiftOptions
}

// NewRedshift creates the dialect used against Redshift clusters.
func NewRedshift(logger *slog.Logger) *Redshift {
	return NewPostgresCompatible(RedshiftOptions{
		Name:           "redshift",
		SSLMode:        "require",
		SimpleProtocol: true,
		DefaultPort:    domain.DefaultRedshiftPort,
		Query:          generateTableDDL,
		Logger:         logger,
	})
}

// NewPostgresCompatible creates a dialect for any PostgreSQL-compatible server.
func NewPostgresCompatible(opts RedshiftOptions) *Redshift {
	if opts.Name == "" {
		opts.Name = "postgres"
	}
	if opts.SSLMode == "" {
		opts.SSLMode = "require"
	}
	if opts.DefaultPort == 0 {
		opts.DefaultPort = 5432
	}
	if opts.Query == "" {
		opts.Query = postgresTableDDL
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Redshift{opts: opts}
}

// Name implements domain.Dialect.
func (d *Redshift) Name() string { return d.opts.Name }

// ConnConfig builds the pgx configuration for a descriptor.
func (d *Redshift) ConnConfig(conn domain.ConnectionDescriptor, password string) (*pgx.ConnConfig, error) {
	port := d.port(conn)
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(conn.User, password),
		Host:   net.JoinHostPort(conn.Host, strconv.Itoa(port)),
		Path:   "/" + conn.Database,
	}
	q := url.Values{}
	q.Set("sslmode", d.opts.SSLMode)
	q.Set("connect_timeout", strconv.Itoa(int(d.opts.ConnectTimeout.Seconds())))
	q.Set("application_name", "redshift-ddl")
	u.RawQuery = q.Encode()

	cfg, err := pgx.ParseConfig(u.String())
	if err != nil {
		// The URL embeds the password; the cause is flattened and redacted.
		return nil, fmt.Errorf("build connection config for %s: %s", conn, redactPassword(err.Error(), password))
	}
	if d.opts.SimpleProtocol {
		cfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
	return cfg, nil
}

// Open connects a single pgx session.
func (d *Redshift) Open(ctx context.Context, conn domain.ConnectionDescriptor, password string) (domain.WarehouseSession, error) {
	port := d.port(conn)
	cfg, err := d.ConnConfig(conn, password)
	if err != nil {
		return nil, &domain.ConnectionError{Host: conn.Host, Port: port, Database: conn.Database, Err: err}
	}

	d.opts.Logger.InfoContext(ctx, "connecting to warehouse",
		"dialect", d.opts.Name, "host", conn.Host, "port", port, "db", conn.Database, "user", conn.User)

	pgConn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, &domain.ConnectionError{Host: conn.Host, Port: port, Database: conn.Database, Err: err}
	}
	return &pgSession{conn: pgConn, query: d.opts.Query, logger: d.opts.Logger}, nil
}

// redactPassword masks password, raw or URL-encoded, in a driver message.
func redactPassword(msg, password string) string {
	if password == "" {
		return msg
	}
	encoded := strings.TrimPrefix(url.UserPassword("", password).String(), ":")
	for _, s := range []string{encoded, password} {
		msg = strings.ReplaceAll(msg, s, "xxxxx")
	}
	return msg
}

func (d *Redshift) port(conn domain.ConnectionDescriptor) int {
	if conn.Port == 0 {
		return d.opts.DefaultPort
	}
	return conn.Port
}

type pgSession struct {
	conn   *pgx.Conn
	query  string
	logger *slog.Logger
}

func (s *pgSession) SchemaDDL(ctx context.Context, schema string) ([]string, error) {
	s.logger.DebugContext(ctx, "executing metadata query", "schema", schema)

	rows, err := s.conn.Query(ctx, s.query, schema)
	if err != nil {
		return nil, fmt.Errorf("query table DDL: %w", err)
	}
	fragments, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("read table DDL: %w", err)
	}
	return fragments, nil
}

func (s *pgSession) EnsureSchema(ctx context.Context, schema string) error {
	stmt := ddl.CreateSchemaIfNotExists(pgx.Identifier{schema}.Sanitize())
	s.logger.DebugContext(ctx, "executing statement", "statement", stmt)

	return pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, stmt)
		return err
	})
}

func (s *pgSession) ExecDDL(ctx context.Context, ddlText string) error {
	if strings.TrimSpace(ddlText) == "" {
		return nil
	}
	s.logger.DebugContext(ctx, "executing DDL batch", "bytes", len(ddlText))

	return pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		// No arguments: pgx sends the batch with the simple protocol, which
		// allows several statements in one round trip.
		_, err := tx.Exec(ctx, ddlText)
		return err
	})
}

func (s *pgSession) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
