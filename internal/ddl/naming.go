package ddl

import (
	"path"
	"strings"

	"redshift-ddl/internal/domain"
)

// KeySuffix terminates every stored DDL document's file name.
const KeySuffix = "_ddl.sql"

// StorageKey returns the content store key for one schema's DDL:
// {host}/{database}/{schema}_ddl.sql.
func StorageKey(host, database, schema string) string {
	return host + "/" + database + "/" + schema + KeySuffix
}

// SchemaFromKey recovers the schema name from a storage key by stripping the
// suffix from the file name. Keys without the suffix, or with nothing in
// front of it, fail with *domain.NamingConventionError.
func SchemaFromKey(key string) (string, error) {
	name := path.Base(key)
	if !strings.HasSuffix(name, KeySuffix) {
		return "", &domain.NamingConventionError{Key: key}
	}
	schema := strings.TrimSuffix(name, KeySuffix)
	if schema == "" {
		return "", &domain.NamingConventionError{Key: key}
	}
	return schema, nil
}
