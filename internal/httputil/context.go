package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey      contextKey = "userID"
	workspaceIDKey contextKey = "workspaceID"
)

// WithUserID adds userID to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// WithWorkspaceID adds the resolved workspace ID to the request context
func WithWorkspaceID(r *http.Request, workspaceID string) *http.Request {
	ctx := context.WithValue(r.Context(), workspaceIDKey, workspaceID)
	return r.WithContext(ctx)
}

// GetWorkspaceID retrieves the workspace ID from context, returns empty string if not found
func GetWorkspaceID(r *http.Request) string {
	workspaceID, _ := r.Context().Value(workspaceIDKey).(string)
	return workspaceID
}
