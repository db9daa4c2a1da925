package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"redshift-ddl/internal/ddl"
	"redshift-ddl/internal/domain"
)

// Compile-time checks.
var (
	_ domain.Dialect          = (*DuckDB)(nil)
	_ domain.WarehouseSession = (*sqlSession)(nil)
)

// DuckDB opens local DuckDB files. The descriptor's Database names the file
// {dir}/{database}.duckdb; Host only labels the storage key.
type DuckDB struct {
	dir    string
	logger *slog.Logger
}

// NewDuckDB creates the dialect rooted at dir ("" means the working directory).
func NewDuckDB(dir string, logger *slog.Logger) *DuckDB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DuckDB{dir: dir, logger: logger}
}

// Name implements domain.Dialect.
func (d *DuckDB) Name() string { return "duckdb" }

// Path returns the database file for a descriptor.
func (d *DuckDB) Path(conn domain.ConnectionDescriptor) string {
	return filepath.Join(d.dir, conn.Database+".duckdb")
}

// Open opens the file and pins one connection for the session. The password
// is ignored; DuckDB files carry no authentication.
func (d *DuckDB) Open(ctx context.Context, conn domain.ConnectionDescriptor, _ string) (domain.WarehouseSession, error) {
	path := d.Path(conn)
	d.logger.InfoContext(ctx, "opening DuckDB database", "path", path)

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, &domain.ConnectionError{Host: conn.Host, Port: conn.Port, Database: conn.Database, Err: err}
	}
	c, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, &domain.ConnectionError{Host: conn.Host, Port: conn.Port, Database: conn.Database, Err: err}
	}
	return &sqlSession{db: db, conn: c, query: duckdbTableDDL, logger: d.logger}, nil
}

// sqlSession is a database/sql session pinned to a single connection.
type sqlSession struct {
	db     *sql.DB
	conn   *sql.Conn
	query  string
	logger *slog.Logger
}

func (s *sqlSession) SchemaDDL(ctx context.Context, schema string) ([]string, error) {
	s.logger.DebugContext(ctx, "executing metadata query", "schema", schema)

	rows, err := s.conn.QueryContext(ctx, s.query, schema)
	if err != nil {
		return nil, fmt.Errorf("query table DDL: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var fragments []string
	for rows.Next() {
		var fragment string
		if err := rows.Scan(&fragment); err != nil {
			return nil, fmt.Errorf("scan table DDL: %w", err)
		}
		fragments = append(fragments, fragment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read table DDL: %w", err)
	}
	return fragments, nil
}

func (s *sqlSession) EnsureSchema(ctx context.Context, schema string) error {
	return s.inTx(ctx, ddl.CreateSchemaIfNotExists(ddl.QuoteIdentifier(schema)))
}

func (s *sqlSession) ExecDDL(ctx context.Context, ddlText string) error {
	if strings.TrimSpace(ddlText) == "" {
		return nil
	}
	return s.inTx(ctx, ddlText)
}

func (s *sqlSession) inTx(ctx context.Context, stmt string) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, stmt); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *sqlSession) Close(context.Context) error {
	connErr := s.conn.Close()
	dbErr := s.db.Close()
	if connErr != nil {
		return connErr
	}
	return dbErr
}
