// Package middleware provides the demo gate that protects the API.
package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/jonathan/family-activities/internal/types"
)

// Gate cookie names and lifetime
const (
	AuthCookieName    = "poc-authenticated"
	AuthCookieValue   = "true"
	SessionCookieName = "poc-session"
	CookieMaxAge      = 86400
)

// authMarker is what the plain gate looks for in the Cookie header
const authMarker = AuthCookieName + "=" + AuthCookieValue

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const sessionIDKey ContextKey = "sessionID"

// TokenValidator verifies a signed session token.
type TokenValidator interface {
	ValidateToken(tokenString string) (SessionIDGetter, error)
}

// SessionIDGetter extracts the session ID from validated claims.
type SessionIDGetter interface {
	GetSessionID() string
}

// Gate rejects requests to non-public paths that are not authenticated.
//
// With a nil validator a request is authenticated when its Cookie header contains
// "poc-authenticated=true" anywhere. The check is a plain substring match with no
// signature, so any client can forge it; set a validator to require a signed
// poc-session cookie instead.
func Gate(validator TokenValidator, public func(path string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public != nil && public(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if validator == nil {
				if !HasAuthMarker(r) {
					unauthorized(w, r)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || strings.TrimSpace(cookie.Value) == "" {
				unauthorized(w, r)
				return
			}
			claims, err := validator.ValidateToken(cookie.Value)
			if err != nil {
				log.Printf("[auth] rejected session for %s: %v", r.URL.Path, err)
				unauthorized(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, claims.GetSessionID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HasAuthMarker reports whether any Cookie header contains the gate marker.
func HasAuthMarker(r *http.Request) bool {
	for _, header := range r.Header.Values("Cookie") {
		if strings.Contains(header, authMarker) {
			return true
		}
	}
	return false
}

// GetSessionID returns the signed session ID stored by Gate, if any.
func GetSessionID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(sessionIDKey).(string)
	return id, ok && id != ""
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	resp := types.NewError("Unauthorized", nil, w.Header().Get("X-Request-ID"))
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[auth] failed to encode response for %s: %v", r.URL.Path, err)
	}
}
