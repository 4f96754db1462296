package requestctx

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	clientKey    ctxKey = "client"
)

// Client describes where a request came from. It ends up on audit entries.
type Client struct {
	IP        string
	UserAgent string
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey, c)
}

func GetClient(ctx context.Context) Client {
	if value, ok := ctx.Value(clientKey).(Client); ok {
		return value
	}
	return Client{}
}
