package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/FocuswithJustin/TabletATF/internal/logging"
)

// APIKeyHeader carries the key that unlocks the import endpoints.
const APIKeyHeader = "X-API-Key"

// requireAPIKey guards store writes. Without a configured key the wrapped
// endpoints are disabled entirely.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := s.cfg.Auth.APIKey
		if key == "" {
			respondError(w, http.StatusForbidden, "IMPORTS_DISABLED", "imports require an API key to be configured")
			return
		}

		apiKey := r.Header.Get(APIKeyHeader)
		if apiKey == "" {
			logging.SecurityEvent("unauthorized_request", "auth",
				"path", r.URL.Path,
				"reason", "missing API key")
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing "+APIKeyHeader+" header")
			return
		}
		if !constantTimeCompare(apiKey, key) {
			logging.SecurityEvent("unauthorized_request", "auth",
				"path", r.URL.Path,
				"reason", "invalid API key")
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// constantTimeCompare compares two keys without leaking where they differ.
func constantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
