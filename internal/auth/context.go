package auth

import "context"

type contextKey string

const userIDContextKey contextKey = "fittrack-user-id"

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user id set by the auth
// middleware, or empty string when the request is not authenticated.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey).(string)
	return userID
}
