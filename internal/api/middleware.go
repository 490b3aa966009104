// Package api implements the revue REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthMiddleware guards routes with a static Bearer token taken from the
// Authorization header. When enabled is false every request passes.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return authenticate(enabled, token, false)
}

// StreamAuthMiddleware guards the event stream. EventSource clients cannot
// set headers, so the token may also arrive as ?access_token=.
func StreamAuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return authenticate(enabled, token, true)
}

func authenticate(enabled bool, token string, allowQuery bool) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := bearerToken(r)
			if !ok && allowQuery {
				got = r.URL.Query().Get("access_token")
				ok = got != ""
			}
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="revue"`)
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the credentials of an "Authorization: Bearer" header.
// The scheme is case-insensitive.
func bearerToken(r *http.Request) (string, bool) {
	scheme, value, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
