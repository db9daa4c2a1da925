package warehouse

import (
	_ "embed"
)

// generateTableDDL is the Redshift metadata query.
//
//go:embed queries/generate_tbl_ddl.sql
var generateTableDDL string

// postgresTableDDL is the PostgreSQL metadata query.
//
//go:embed queries/postgres_tbl_ddl.sql
var postgresTableDDL string

// duckdbTableDDL is the DuckDB metadata query.
//
//go:embed queries/duckdb_tbl_ddl.sql
var duckdbTableDDL string
