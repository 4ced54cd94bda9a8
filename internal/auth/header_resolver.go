package auth

import (
	"net/http"

	"cubby/internal/domain"
)

// HeaderResolver is a dev-mode SessionResolver that trusts an
// X-User-ID header, with an optional fallback user for local work.
// Production deployments swap in a real verifier behind the same
// interface.
type HeaderResolver struct {
	fallbackUserID string
}

// NewHeaderResolver creates a header-based session resolver.
// fallbackUserID may be empty, in which case requests without the
// header are rejected.
func NewHeaderResolver(fallbackUserID string) *HeaderResolver {
	return &HeaderResolver{fallbackUserID: fallbackUserID}
}

// ResolveUser returns the X-User-ID header value, or the configured
// fallback when the header is absent
func (h *HeaderResolver) ResolveUser(r *http.Request) (string, error) {
	if userID := r.Header.Get("X-User-ID"); userID != "" {
		return userID, nil
	}
	if h.fallbackUserID != "" {
		return h.fallbackUserID, nil
	}
	return "", domain.ErrUnauthorized
}
