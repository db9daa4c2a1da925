package domain

import "context"

// SecretResolver turns a credential reference into its plaintext value.
// Implemented by secrets.SecretsManagerResolver and secrets.EnvResolver.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// ContentStore is blob storage addressed by bucket and key.
// Implemented by contentstore.S3Store, contentstore.GCSStore and contentstore.AzureStore.
type ContentStore interface {
	// Scheme is the URI scheme of references into this store, e.g. "s3".
	Scheme() string
	// Put writes body as a whole object, replacing any previous version.
	Put(ctx context.Context, bucket, key string, body []byte) error
	// Get returns the object body or a *ContentNotFoundError.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// Dialect opens sessions against one kind of warehouse.
// Implemented by warehouse.Redshift and warehouse.DuckDB.
type Dialect interface {
	Name() string
	Open(ctx context.Context, conn ConnectionDescriptor, password string) (WarehouseSession, error)
}

// WarehouseSession is a single database session reused for a whole invocation.
type WarehouseSession interface {
	// SchemaDDL runs the metadata query for schema and returns one DDL
	// fragment per row, in query order.
	SchemaDDL(ctx context.Context, schema string) ([]string, error)
	// EnsureSchema creates schema if it does not exist, in its own transaction.
	EnsureSchema(ctx context.Context, schema string) error
	// ExecDDL runs ddl verbatim as one batch in its own transaction.
	ExecDDL(ctx context.Context, ddl string) error
	Close(ctx context.Context) error
}
