package handler

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambdacontext"

	"redshift-ddl/internal/domain"
)

// Extractor is the save side of the relay.
type Extractor interface {
	Extract(ctx context.Context, conn domain.ConnectionDescriptor, schemas []string) (map[string]string, error)
}

// Replayer is the execute side of the relay.
type Replayer interface {
	Execute(ctx context.Context, conn domain.ConnectionDescriptor, refs []string) (domain.SuccessMarker, error)
}

// Handler serves save-ddl and execute-ddl events.
type Handler struct {
	extractor Extractor
	replayer  Replayer
	logger    *slog.Logger
}

// New creates a Handler. Either service may be nil when the binary only
// serves the other event.
func New(extractor Extractor, replayer Replayer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{extractor: extractor, replayer: replayer, logger: logger}
}

// SaveDDL handles an extract event and returns schema -> stored reference.
func (h *Handler) SaveDDL(ctx context.Context, event ExtractEvent) (map[string]string, error) {
	ctx = withLambdaRequestID(ctx)
	if h.extractor == nil {
		return nil, domain.ErrValidation("extract is not served by this function")
	}
	if err := event.Validate(); err != nil {
		return nil, h.fail(ctx, "invalid extract event", err)
	}
	conn := event.Connection.Descriptor()
	h.logger.InfoContext(ctx, "saving DDL",
		"request_id", domain.InvocationIDFromContext(ctx), "connection", conn.String(), "schemas", len(event.Schemas))

	out, err := h.extractor.Extract(ctx, conn, event.Schemas)
	if err != nil {
		return nil, h.fail(ctx, "save DDL failed", err)
	}
	return out, nil
}

// ExecuteDDL handles an execute event.
func (h *Handler) ExecuteDDL(ctx context.Context, event ExecuteEvent) (domain.SuccessMarker, error) {
	ctx = withLambdaRequestID(ctx)
	if h.replayer == nil {
		return domain.SuccessMarker{}, domain.ErrValidation("execute is not served by this function")
	}
	if err := event.Validate(); err != nil {
		return domain.SuccessMarker{}, h.fail(ctx, "invalid execute event", err)
	}
	conn := event.Connection.Descriptor()
	h.logger.InfoContext(ctx, "executing DDL",
		"request_id", domain.InvocationIDFromContext(ctx), "connection", conn.String(), "uris", len(event.DDLURIs))

	marker, err := h.replayer.Execute(ctx, conn, event.DDLURIs)
	if err != nil {
		return domain.SuccessMarker{}, h.fail(ctx, "execute DDL failed", err)
	}
	return marker, nil
}

func (h *Handler) fail(ctx context.Context, msg string, err error) error {
	_, code := Classify(err)
	h.logger.ErrorContext(ctx, msg, "request_id", domain.InvocationIDFromContext(ctx), "code", code, "error", err)
	return err
}

// withLambdaRequestID copies the Lambda request ID into the context unless an
// invocation ID is already present.
func withLambdaRequestID(ctx context.Context) context.Context {
	if domain.InvocationIDFromContext(ctx) != "" {
		return ctx
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return domain.WithInvocationID(ctx, lc.AwsRequestID)
	}
	return domain.WithInvocationID(ctx, domain.NewID())
}
