package domain

import (
	"fmt"
	"strings"
)

// DefaultRedshiftPort is the port Redshift clusters listen on unless configured otherwise.
const DefaultRedshiftPort = 5439

// ConnectionDescriptor identifies a warehouse endpoint for one invocation.
// It is never persisted and the resolved password never leaves the session.
// An empty CredentialRef connects without a password (DuckDB files, trust auth).
type ConnectionDescriptor struct {
	Host          string
	Port          int
	Database      string
	User          string
	CredentialRef string
}

// Validate checks that the descriptor is well-formed.
func (c ConnectionDescriptor) Validate() error {
	if c.Host == "" {
		return ErrValidation("connection host is required")
	}
	if c.Database == "" {
		return ErrValidation("connection db is required")
	}
	if c.User == "" {
		return ErrValidation("connection user is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return ErrValidation("connection port %d is out of range", c.Port)
	}
	// host and database become path segments of the storage key.
	if strings.ContainsAny(c.Host, `/\`) {
		return ErrValidation("connection host %q must not contain path separators", c.Host)
	}
	if strings.ContainsAny(c.Database, `/\`) {
		return ErrValidation("connection db %q must not contain path separators", c.Database)
	}
	return nil
}

// String renders the endpoint for logs. It never includes credentials.
func (c ConnectionDescriptor) String() string {
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}

// SuccessMarker is returned by a fully successful replay.
type SuccessMarker struct {
	Message string `json:"message"`
}

// Success is the fixed marker value returned on full success.
var Success = SuccessMarker{Message: "Success"}
