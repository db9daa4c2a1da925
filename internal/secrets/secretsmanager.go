// Package secrets resolves credential references to plaintext passwords.
package secrets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"redshift-ddl/internal/domain"
)

// Compile-time check: SecretsManagerResolver implements domain.SecretResolver.
var _ domain.SecretResolver = (*SecretsManagerResolver)(nil)

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerResolver reads secrets from AWS Secrets Manager.
type SecretsManagerResolver struct {
	client SecretsManagerAPI
	logger *slog.Logger
}

// NewSecretsManagerResolver creates a resolver from an AWS config. The
// client sends each request once, whatever retryer cfg carries.
func NewSecretsManagerResolver(cfg aws.Config, logger *slog.Logger) *SecretsManagerResolver {
	client := secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
		o.Retryer = aws.NopRetryer{}
	})
	return NewSecretsManagerResolverWithClient(client, logger)
}

// NewSecretsManagerResolverWithClient creates a resolver around an existing client.
func NewSecretsManagerResolverWithClient(client SecretsManagerAPI, logger *slog.Logger) *SecretsManagerResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SecretsManagerResolver{client: client, logger: logger}
}

// Resolve returns SecretString as-is when present, otherwise the raw
// SecretBinary bytes. Failures are not retried.
func (r *SecretsManagerResolver) Resolve(ctx context.Context, ref string) (string, error) {
	r.logger.DebugContext(ctx, "retrieving secret value", "secret", ref)

	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(ref),
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "the requested secret could not be retrieved", "secret", ref, "error", err)
		return "", &domain.SecretUnavailableError{Ref: ref, Err: err}
	}
	if out.SecretString != nil {
		return *out.SecretString, nil
	}
	if out.SecretBinary != nil {
		return string(out.SecretBinary), nil
	}
	return "", &domain.SecretUnavailableError{Ref: ref, Err: fmt.Errorf("secret has neither a string nor a binary value")}
}
