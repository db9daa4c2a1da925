package secrets

import (
	"context"
	"errors"
	"strings"

	"redshift-ddl/internal/domain"
)

var (
	errNotEnvRef = errors.New("reference is not of the form env:NAME")
	errEnvUnset  = errors.New("environment variable is not set")
)

// Compile-time check: Router implements domain.SecretResolver.
var _ domain.SecretResolver = (*Router)(nil)

// Router dispatches env: references to the environment and everything else
// to the default resolver.
type Router struct {
	env      domain.SecretResolver
	fallback domain.SecretResolver
}

// NewRouter creates a Router. fallback may be nil, in which case only env:
// references resolve.
func NewRouter(fallback domain.SecretResolver) *Router {
	return &Router{env: EnvResolver{}, fallback: fallback}
}

// Resolve implements domain.SecretResolver.
func (r *Router) Resolve(ctx context.Context, ref string) (string, error) {
	if strings.HasPrefix(ref, EnvPrefix) {
		return r.env.Resolve(ctx, ref)
	}
	if r.fallback == nil {
		return "", &domain.SecretUnavailableError{Ref: ref, Err: errors.New("no secret store configured")}
	}
	return r.fallback.Resolve(ctx, ref)
}
