// Package handler adapts Lambda-style JSON events to the relay services. The
// same events are accepted by the Lambda functions and the HTTP server.
package handler

import (
	"redshift-ddl/internal/domain"
)

// ConnectionEvent is the "connection" object of every event.
type ConnectionEvent struct {
	Host              string `json:"host"`
	Port              int    `json:"port"`
	DB                string `json:"db"`
	User              string `json:"user"`
	PasswordSecretARN string `json:"password_secret_arn"`
}

// Descriptor converts the event into a connection descriptor. A zero port
// means the warehouse default.
func (c ConnectionEvent) Descriptor() domain.ConnectionDescriptor {
	return domain.ConnectionDescriptor{
		Host:          c.Host,
		Port:          c.Port,
		Database:      c.DB,
		User:          c.User,
		CredentialRef: c.PasswordSecretARN,
	}
}

// Validate checks the connection object, including the secret reference
// which every invocation must carry.
func (c ConnectionEvent) Validate() error {
	if err := c.Descriptor().Validate(); err != nil {
		return err
	}
	if c.PasswordSecretARN == "" {
		return domain.ErrValidation("connection password_secret_arn is required")
	}
	return nil
}

// ExtractEvent is the input of the save-ddl function.
type ExtractEvent struct {
	Connection ConnectionEvent `json:"connection"`
	Schemas    []string        `json:"schemas"`
}

// Validate checks the event before any I/O happens.
func (e ExtractEvent) Validate() error {
	if err := e.Connection.Validate(); err != nil {
		return err
	}
	if e.Schemas == nil {
		return domain.ErrValidation("schemas is required")
	}
	return nil
}

// ExecuteEvent is the input of the execute-ddl function.
type ExecuteEvent struct {
	Connection ConnectionEvent `json:"connection"`
	DDLURIs    []string        `json:"ddl_s3_uris"`
}

// Validate checks the event before any I/O happens.
func (e ExecuteEvent) Validate() error {
	if err := e.Connection.Validate(); err != nil {
		return err
	}
	if e.DDLURIs == nil {
		return domain.ErrValidation("ddl_s3_uris is required")
	}
	return nil
}
