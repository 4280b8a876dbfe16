package middleware

import (
	"context"

	qskema "github.com/reoring/qskema"
)

// ctxKeyDecoded is a typed context key for storing Decoded[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a Decoded[T] to the context.
func ContextWithDecoded[T any](ctx context.Context, d qskema.Decoded[T]) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, d)
}

// DecodedFromContext retrieves a Decoded[T] from context.
func DecodedFromContext[T any](ctx context.Context) (qskema.Decoded[T], bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(qskema.Decoded[T])
	return v, ok
}

// DefaultDecodeOpt returns a recommended default for HTTP query boundaries.
// Presence is collected for preserve-friendly semantics.
func DefaultDecodeOpt() qskema.DecodeOpt {
	return qskema.DecodeOpt{
		Presence: qskema.PresenceOpt{Collect: true},
	}
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []qskema.Issue) map[string]any {
	return map[string]any{"issues": issues}
}
