package middleware

import (
	"net/http"

	services "cubby/internal/domain/services/drive"
	"cubby/internal/httputil"
)

// Workspace resolves the caller's workspace (provisioning one on first
// contact) and stores its ID in the request context. Runs after Auth.
func Workspace(workspaceSvc services.WorkspaceService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := httputil.GetUserID(r)
			if userID == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			ws, err := workspaceSvc.Resolve(r.Context(), userID)
			if err != nil {
				httputil.RespondError(w, http.StatusInternalServerError, "failed to resolve workspace")
				return
			}

			next.ServeHTTP(w, httputil.WithWorkspaceID(r, ws.ID))
		})
	}
}
