// Package schedule runs recurring DDL snapshots. Jobs are read from a YAML
// file and each cron tick saves the DDL of the job's schemas; the versioned
// bucket keeps the history.
package schedule

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"redshift-ddl/internal/domain"
)

// Connection is the YAML form of a warehouse connection.
type Connection struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	DB                string `yaml:"db"`
	User              string `yaml:"user"`
	PasswordSecretARN string `yaml:"password_secret_arn"`
}

// Descriptor converts the YAML connection into a connection descriptor.
func (c Connection) Descriptor() domain.ConnectionDescriptor {
	return domain.ConnectionDescriptor{
		Host:          c.Host,
		Port:          c.Port,
		Database:      c.DB,
		User:          c.User,
		CredentialRef: c.PasswordSecretARN,
	}
}

// Job is one scheduled extraction.
type Job struct {
	Name       string     `yaml:"name"`
	Cron       string     `yaml:"cron"`
	Connection Connection `yaml:"connection"`
	Schemas    []string   `yaml:"schemas"`
}

type file struct {
	Jobs []Job `yaml:"jobs"`
}

// LoadFile reads and validates a schedule file.
func LoadFile(path string) ([]Job, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}
	jobs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schedule file %s: %w", path, err)
	}
	return jobs, nil
}

// Parse decodes schedule YAML. Unknown fields are rejected.
func Parse(data []byte) ([]Job, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, domain.ErrValidation("invalid schedule YAML: %v", err)
	}

	seen := make(map[string]struct{}, len(f.Jobs))
	for i, j := range f.Jobs {
		if err := j.validate(); err != nil {
			return nil, fmt.Errorf("job %d: %w", i, err)
		}
		if _, dup := seen[j.Name]; dup {
			return nil, domain.ErrValidation("duplicate job name %q", j.Name)
		}
		seen[j.Name] = struct{}{}
	}
	return f.Jobs, nil
}

func (j Job) validate() error {
	if j.Name == "" {
		return domain.ErrValidation("name is required")
	}
	if _, err := cron.ParseStandard(j.Cron); err != nil {
		return domain.ErrValidation("job %q: invalid cron expression %q: %v", j.Name, j.Cron, err)
	}
	if err := j.Connection.Descriptor().Validate(); err != nil {
		return fmt.Errorf("job %q: %w", j.Name, err)
	}
	if len(j.Schemas) == 0 {
		return domain.ErrValidation("job %q: at least one schema is required", j.Name)
	}
	return nil
}
