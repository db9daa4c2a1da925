package domain

import "context"

type invocationIDKey struct{}

// WithInvocationID stores the identifier of the current invocation (Lambda
// request ID, HTTP request ID or scheduler run ID) in the context.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey{}, id)
}

// InvocationIDFromContext returns the invocation ID, or "" when none is set.
func InvocationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(invocationIDKey{}).(string)
	return id
}
