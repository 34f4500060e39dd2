package cost

import "context"

type requestTypeKey struct{}

// ContextWithRequestType tags a context with the request type of the model call it carries.
func ContextWithRequestType(ctx context.Context, t RequestType) context.Context {
	return context.WithValue(ctx, requestTypeKey{}, t)
}

// RequestTypeFrom returns the request type stored in ctx, or fallback when none was stored.
func RequestTypeFrom(ctx context.Context, fallback RequestType) RequestType {
	if t, ok := ctx.Value(requestTypeKey{}).(RequestType); ok {
		return t
	}
	return fallback
}
