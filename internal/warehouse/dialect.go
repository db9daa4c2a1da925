package warehouse

import (
	"fmt"
	"log/slog"
	"strings"

	"redshift-ddl/internal/domain"
)

// Options configures dialect construction.
type Options struct {
	SSLMode   string // redshift/postgres sslmode
	DuckDBDir string // directory holding DuckDB files
	Logger    *slog.Logger
}

// NewDialect returns the dialect registered under name.
func NewDialect(name string, opts Options) (domain.Dialect, error) {
	switch strings.ToLower(name) {
	case "", "redshift":
		d := NewRedshift(opts.Logger)
		if opts.SSLMode != "" {
			d.opts.SSLMode = opts.SSLMode
		}
		return d, nil
	case "postgres", "postgresql":
		return NewPostgresCompatible(RedshiftOptions{
			Name:    "postgres",
			SSLMode: opts.SSLMode,
			Logger:  opts.Logger,
		}), nil
	case "duckdb":
		return NewDuckDB(opts.DuckDBDir, opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown warehouse dialect %q; supported: redshift, postgres, duckdb", name)
	}
}
