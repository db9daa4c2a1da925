// Package domain defines core types, interfaces, and errors for the DDL relay.
package domain

import "fmt"

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// SecretUnavailableError indicates the secret store could not produce a value
// for a credential reference (not found, access denied, transient fault).
type SecretUnavailableError struct {
	Ref string
	Err error
}

func (e *SecretUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("secret %q unavailable", e.Ref)
	}
	return fmt.Sprintf("secret %q unavailable: %v", e.Ref, e.Err)
}

func (e *SecretUnavailableError) Unwrap() error { return e.Err }

// ConnectionError indicates the warehouse was unreachable or rejected the credentials.
type ConnectionError struct {
	Host     string
	Port     int
	Database string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s:%d/%s: %v", e.Host, e.Port, e.Database, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// InvalidReferenceError indicates a stored content reference that cannot be
// parsed into a (bucket, key) pair or names an unsupported scheme.
type InvalidReferenceError struct {
	Ref    string
	Reason string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference %q: %s", e.Ref, e.Reason)
}

// ContentNotFoundError indicates no blob exists at the referenced location.
type ContentNotFoundError struct {
	Ref string
	Err error
}

func (e *ContentNotFoundError) Error() string {
	return fmt.Sprintf("content not found at %q", e.Ref)
}

func (e *ContentNotFoundError) Unwrap() error { return e.Err }

// NamingConventionError indicates a storage key whose file name does not end
// in the DDL suffix, so no schema name can be derived from it.
type NamingConventionError struct {
	Key string
}

func (e *NamingConventionError) Error() string {
	return fmt.Sprintf("key %q does not follow the <schema>_ddl.sql naming convention", e.Key)
}

// SchemaCreateError indicates the idempotent schema creation statement failed.
type SchemaCreateError struct {
	Schema string
	Err    error
}

func (e *SchemaCreateError) Error() string {
	return fmt.Sprintf("create schema %q: %v", e.Schema, e.Err)
}

func (e *SchemaCreateError) Unwrap() error { return e.Err }

// DdlExecutionError indicates the stored DDL batch failed against the warehouse.
// The batch was rolled back; earlier references in the same run stay committed.
type DdlExecutionError struct {
	Ref    string
	Schema string
	Err    error
}

func (e *DdlExecutionError) Error() string {
	return fmt.Sprintf("execute DDL from %q in schema %q: %v", e.Ref, e.Schema, e.Err)
}

func (e *DdlExecutionError) Unwrap() error { return e.Err }

// SchemaProcessingError indicates extraction of one schema failed, either on
// validation, on the metadata query or on the content store write.
type SchemaProcessingError struct {
	Schema string
	Err    error
}

func (e *SchemaProcessingError) Error() string {
	return fmt.Sprintf("process schema %q: %v", e.Schema, e.Err)
}

func (e *SchemaProcessingError) Unwrap() error { return e.Err }
