package ddl

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxIdentifierLen is the longest identifier Redshift accepts, in bytes.
const maxIdentifierLen = 127

// ValidateSchemaName checks that name can be used both as a SQL identifier
// parameter and as a storage key segment:
//   - Non-empty
//   - At most 127 bytes of valid UTF-8
//   - No path separators, control characters or NUL
func ValidateSchemaName(name string) error {
	if name == "" {
		return fmt.Errorf("schema name is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("schema name must be at most %d bytes", maxIdentifierLen)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("schema name must be valid UTF-8")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("schema name must not contain path separators")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("schema name must not contain control characters")
		}
	}
	return nil
}

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double-quote characters by doubling them (standard SQL).
//
// Always quotes unconditionally; validate first when the input is untrusted.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
