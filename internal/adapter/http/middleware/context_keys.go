package middleware

import "context"

// ContextKey is the type of request context keys set by this package.
type ContextKey string

const (
	UserIDCtxKey    = ContextKey("user_id")
	SessionIDCtxKey = ContextKey("session_id")
)

// UserIDFromContext returns the authenticated caller, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserIDCtxKey).(string)
	return id
}

func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDCtxKey).(string)
	return id
}
