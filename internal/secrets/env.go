package secrets

import (
	"context"
	"os"
	"strings"

	"redshift-ddl/internal/domain"
)

// EnvPrefix marks credential references resolved from the process environment.
const EnvPrefix = "env:"

// Compile-time check: EnvResolver implements domain.SecretResolver.
var _ domain.SecretResolver = EnvResolver{}

// EnvResolver resolves "env:NAME" references from environment variables.
// Meant for local runs of ddlctl; deployed functions use Secrets Manager.
type EnvResolver struct{}

// Resolve returns the value of the referenced environment variable.
func (EnvResolver) Resolve(_ context.Context, ref string) (string, error) {
	name, ok := strings.CutPrefix(ref, EnvPrefix)
	if !ok || name == "" {
		return "", &domain.SecretUnavailableError{Ref: ref, Err: errNotEnvRef}
	}
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", &domain.SecretUnavailableError{Ref: ref, Err: errEnvUnset}
	}
	return v, nil
}
