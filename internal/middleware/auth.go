package middleware

import (
	"net/http"

	"cubby/internal/auth"
	"cubby/internal/httputil"
)

// Auth resolves the caller's session and stores the user ID in the
// request context. Requests without a session get a 401.
func Auth(resolver auth.SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolver.ResolveUser(r)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, userID))
		})
	}
}
