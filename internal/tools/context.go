package tools

import "context"

type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID adds the acting user's ID to the context. Tool handlers
// that read per-user data take identity from here rather than from
// model-supplied arguments.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext extracts the user ID from the context. Returns ""
// if not set.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
