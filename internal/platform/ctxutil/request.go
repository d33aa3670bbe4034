package ctxutil

import "context"

type (
	traceDataKey   struct{}
	requestDataKey struct{}
)

// TraceData carries correlation ids for one inbound request.
type TraceData struct {
	TraceID   string
	RequestID string
}

// RequestData carries the caller's identity. AnonymousID is the opaque
// client token from X-Anonymous-Id; Principal is set only on admin routes.
type RequestData struct {
	AnonymousID string
	Principal   string
	Role        string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// AnonymousID returns the caller's anonymous identity or "".
func AnonymousID(ctx context.Context) string {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.AnonymousID
	}
	return ""
}
