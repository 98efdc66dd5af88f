package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/family-activities/internal/server/middleware"
	"github.com/jonathan/family-activities/internal/types"
)

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse tells the client the gate is open and which session-storage flag to set
type LoginResponse struct {
	Authenticated     bool   `json:"authenticated"`
	SessionStorageKey string `json:"sessionStorageKey"`
	Signed            bool   `json:"signed"`
	ExpiresAt         string `json:"expiresAt"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "password", Message: "request body must be JSON"})
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "password", Message: "password is required"})
		return
	}

	if !s.gate.Check(req.Password) {
		log.Printf("[auth] failed login from %s", clientID(r))
		s.errorResponse(w, r, &ErrUnauthorized{})
		return
	}

	maxAge := middleware.CookieMaxAge
	if s.sessions != nil {
		token, err := s.sessions.GenerateToken()
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		maxAge = int(s.sessions.TTL().Seconds())
		http.SetCookie(w, s.cookie(middleware.SessionCookieName, token, maxAge, true))
	}
	http.SetCookie(w, s.cookie(middleware.AuthCookieName, middleware.AuthCookieValue, middleware.CookieMaxAge, false))

	log.Printf("[auth] login from %s, signed=%t", clientID(r), s.sessions != nil)
	s.success(w, types.NewSuccess(LoginResponse{
		Authenticated:     true,
		SessionStorageKey: middleware.AuthCookieName,
		Signed:            s.sessions != nil,
		ExpiresAt:         time.Now().UTC().Add(time.Duration(maxAge) * time.Second).Format(time.RFC3339),
	}))
}

// handleLogout clears the gate cookies so the demo starts over
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, s.cookie(middleware.AuthCookieName, "", -1, false))
	http.SetCookie(w, s.cookie(middleware.SessionCookieName, "", -1, true))
	s.success(w, types.NewSuccess(map[string]bool{"authenticated": false}))
}

// cookie builds a gate cookie. The plain marker stays readable by the page script.
func (s *Server) cookie(name, value string, maxAge int, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   s.env.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}
