package familykit

import (
	"context"
)

// Context keys for familykit values.
type contextKey string

const (
	contextKeyActor     contextKey = "familykit:actor"
	contextKeyRequestID contextKey = "familykit:request_id"
	contextKeyVerdict   contextKey = "familykit:verdict"
)

// WithActor adds the acting user to the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextKeyActor, actor)
}

// GetActor retrieves the acting user from context.
// The boolean is false when no actor with an ID and a role is set.
func GetActor(ctx context.Context) (Actor, bool) {
	if v := ctx.Value(contextKeyActor); v != nil {
		if a, ok := v.(Actor); ok && a.ID != "" && a.Role != "" {
			return a, true
		}
	}
	return Actor{}, false
}

// MustGetActor retrieves the acting user from context.
// Panics if not set.
func MustGetActor(ctx context.Context) Actor {
	actor, ok := GetActor(ctx)
	if !ok {
		panic("familykit: actor not in context")
	}
	return actor
}

// WithRequestID adds a request ID to the context (for logging and correlation).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(contextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithVerdict stores the verdict that admitted the request.
// This is set by middleware and can be retrieved in handlers.
func WithVerdict(ctx context.Context, v Verdict) context.Context {
	return context.WithValue(ctx, contextKeyVerdict, v)
}

// GetVerdict retrieves the verdict stored by middleware.
func GetVerdict(ctx context.Context) (Verdict, bool) {
	if v := ctx.Value(contextKeyVerdict); v != nil {
		if verdict, ok := v.(Verdict); ok {
			return verdict, true
		}
	}
	return Verdict{}, false
}
