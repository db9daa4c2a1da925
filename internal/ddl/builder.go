// Package ddl holds the naming convention for stored DDL documents and the
// identifier handling shared by the warehouse dialects.
package ddl

import (
	"fmt"
	"strings"
)

// CreateSchemaIfNotExists returns CREATE SCHEMA IF NOT EXISTS for an already
// quoted identifier. Each dialect quotes with its own driver facility.
func CreateSchemaIfNotExists(quotedName string) string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", quotedName)
}

// Document joins metadata query rows into one DDL document in row order.
// Zero rows produce an empty document.
func Document(rows []string) string {
	return strings.Join(rows, "\n")
}
