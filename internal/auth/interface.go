package auth

import "net/http"

// SessionResolver extracts the authenticated user from a request.
// This abstraction keeps the middleware agnostic to how sessions are
// actually verified; the engine itself never inspects credentials.
type SessionResolver interface {
	// ResolveUser returns the user ID the request acts as.
	// Returns domain.ErrUnauthorized when no session can be established.
	ResolveUser(r *http.Request) (string, error)
}
