package warehouse

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redshift-ddl/internal/domain"
)

// seedDuckDB creates {dir}/{name}.duckdb and runs stmts against it.
func seedDuckDB(t *testing.T, d *DuckDB, name string, stmts ...string) domain.ConnectionDescriptor {
	t.Helper()
	conn := domain.ConnectionDescriptor{Host: "local", Database: name, User: "admin"}

	db, err := sql.Open("duckdb", d.Path(conn))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return conn
}

func openSession(t *testing.T, d *DuckDB, conn domain.ConnectionDescriptor) domain.WarehouseSession {
	t.Helper()
	s, err := d.Open(context.Background(), conn, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func tableExists(t *testing.T, s domain.WarehouseSession, schema, table string) bool {
	t.Helper()
	var n int
	row := s.(*sqlSession).conn.QueryRowContext(context.Background(),
		"SELECT count(*) FROM duckdb_tables() WHERE schema_name = ? AND table_name = ?", schema, table)
	require.NoError(t, row.Scan(&n))
	return n > 0
}

func TestDuckDB_SchemaDDL(t *testing.T) {
	d := NewDuckDB(t.TempDir(), slog.New(slog.DiscardHandler))
	conn := seedDuckDB(t, d, "source",
		"CREATE SCHEMA sales",
		"CREATE TABLE sales.orders (id INTEGER NOT NULL, customer VARCHAR)",
		"CREATE TABLE sales.customers (id INTEGER NOT NULL)",
		"CREATE SCHEMA empty_schema",
	)
	s := openSession(t, d, conn)
	ctx := context.Background()

	fragments, err := s.SchemaDDL(ctx, "sales")
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	// Ordered by table name.
	assert.True(t, strings.HasPrefix(fragments[0], "CREATE TABLE IF NOT EXISTS sales.customers("), fragments[0])
	assert.True(t, strings.HasPrefix(fragments[1], "CREATE TABLE IF NOT EXISTS sales.orders("), fragments[1])
	assert.Contains(t, fragments[1], "id INTEGER NOT NULL")
	assert.Contains(t, fragments[1], "customer VARCHAR")

	fragments, err = s.SchemaDDL(ctx, "empty_schema")
	require.NoError(t, err)
	assert.Empty(t, fragments)

	fragments, err = s.SchemaDDL(ctx, "no_such_schema")
	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestDuckDB_EnsureSchemaIsIdempotent(t *testing.T) {
	d := NewDuckDB(t.TempDir(), nil)
	conn := seedDuckDB(t, d, "target")
	s := openSession(t, d, conn)
	ctx := context.Background()

	require.NoError(t, s.EnsureSchema(ctx, "sales"))
	require.NoError(t, s.EnsureSchema(ctx, "sales"))

	var n int
	row := s.(*sqlSession).conn.QueryRowContext(ctx,
		"SELECT count(*) FROM duckdb_schemas() WHERE schema_name = 'sales' AND database_name = current_database()")
	require.NoError(t, row.Scan(&n))
	assert.Equal(t, 1, n)
}

func TestDuckDB_EnsureSchemaQuotesIdentifier(t *testing.T) {
	d := NewDuckDB(t.TempDir(), nil)
	conn := seedDuckDB(t, d, "target", "CREATE TABLE main.victim (id INTEGER)")
	s := openSession(t, d, conn)

	require.NoError(t, s.EnsureSchema(context.Background(), `x"; DROP TABLE main.victim; --`))
	assert.True(t, tableExists(t, s, "main", "victim"))
}

func TestDuckDB_RoundTrip(t *testing.T) {
	d := NewDuckDB(t.TempDir(), nil)
	src := seedDuckDB(t, d, "source",
		"CREATE SCHEMA sales",
		"CREATE TABLE sales.orders (id INTEGER NOT NULL, amount DECIMAL(10,2))",
	)
	dst := seedDuckDB(t, d, "target")
	ctx := context.Background()

	fragments, err := openSession(t, d, src).SchemaDDL(ctx, "sales")
	require.NoError(t, err)

	target := openSession(t, d, dst)
	require.NoError(t, target.EnsureSchema(ctx, "sales"))
	for _, f := range fragments {
		require.NoError(t, target.ExecDDL(ctx, f))
	}
	assert.True(t, tableExists(t, target, "sales", "orders"))

	// Replaying the same document again is harmless.
	for _, f := range fragments {
		require.NoError(t, target.ExecDDL(ctx, f))
	}
}

func TestDuckDB_RoundTripKeepsDefaultsAndConstraints(t *testing.T) {
	d := NewDuckDB(t.TempDir(), nil)
	src := seedDuckDB(t, d, "source",
		"CREATE SCHEMA sales",
		"CREATE TABLE sales.orders (id INTEGER PRIMARY KEY, status VARCHAR DEFAULT 'new', qty INTEGER CHECK (qty > 0))",
		"CREATE TABLE sales.skus (sku VARCHAR UNIQUE NOT NULL)",
	)
	dst := seedDuckDB(t, d, "target")
	ctx := context.Background()

	fragments, err := openSession(t, d, src).SchemaDDL(ctx, "sales")
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Contains(t, fragments[0], "sales.orders(")
	assert.Contains(t, fragments[0], "PRIMARY KEY")
	assert.Contains(t, fragments[0], "DEFAULT('new')")
	assert.Contains(t, fragments[0], "CHECK((qty > 0))")
	assert.Contains(t, fragments[1], "sales.skus(")
	assert.Contains(t, fragments[1], "UNIQUE")

	target := openSession(t, d, dst)
	require.NoError(t, target.EnsureSchema(ctx, "sales"))
	require.NoError(t, target.ExecDDL(ctx, strings.Join(fragments, "\n")))

	replayed, err := target.SchemaDDL(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, fragments, replayed)

	conn := target.(*sqlSession).conn
	_, err = conn.ExecContext(ctx, "INSERT INTO sales.orders (id, qty) VALUES (1, 2)")
	require.NoError(t, err)
	var status string
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT status FROM sales.orders WHERE id = 1").Scan(&status))
	assert.Equal(t, "new", status)

	_, err = conn.ExecContext(ctx, "INSERT INTO sales.orders (id, qty) VALUES (1, 3)")
	assert.Error(t, err, "primary key survives the replay")
	_, err = conn.ExecContext(ctx, "INSERT INTO sales.orders (id, qty) VALUES (2, 0)")
	assert.Error(t, err, "check constraint survives the replay")
}

func TestDuckDB_ExecDDLRollsBackFailedBatch(t *testing.T) {
	d := NewDuckDB(t.TempDir(), nil)
	s := openSession(t, d, seedDuckDB(t, d, "target", "CREATE SCHEMA sales"))
	ctx := context.Background()

	err := s.ExecDDL(ctx, "CREATE TABLE sales.first (id INTEGER); CREATE TABLE missing_schema.second (id INTEGER);")
	require.Error(t, err)
	assert.False(t, tableExists(t, s, "sales", "first"))

	// The session stays usable after the rollback.
	require.NoError(t, s.ExecDDL(ctx, "CREATE TABLE sales.third (id INTEGER);"))
	assert.True(t, tableExists(t, s, "sales", "third"))
}

func TestDuckDB_ExecDDLEmptyIsNoop(t *testing.T) {
	d := NewDuckDB(t.TempDir(), nil)
	s := openSession(t, d, seedDuckDB(t, d, "target"))
	require.NoError(t, s.ExecDDL(context.Background(), ""))
	require.NoError(t, s.ExecDDL(context.Background(), "\n  \n"))
}
