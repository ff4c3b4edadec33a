package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"sitemap-console/pkg/config"
)

var authBypassPaths = map[string]struct{}{
	"/healthz":    {},
	"/readyz":     {},
	"/api/health": {},
}

type authorKey struct{}

// authorFromContext returns who made the request, for revision records.
func authorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(authorKey{}).(string); ok {
		return v
	}
	return ""
}

func (s *Server) applyAuthConfig(cfg config.AuthConfig) {
	s.authMu.Lock()
	defer s.authMu.Unlock()

	s.authEnabled = cfg.Enabled
	s.apiKey = cfg.APIKey
	s.authHeader = cfg.Header
	if s.authHeader == "" {
		s.authHeader = "Authorization"
	}
	s.basicUser = cfg.Username
	s.passwordHash = cfg.PasswordHash
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	if s == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.isAuthRequired(r) {
			next.ServeHTTP(w, r)
			return
		}

		if author, ok := s.authorizeRequest(r); ok {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authorKey{}, author)))
			return
		}

		if s.hasBasicCredentials() {
			w.Header().Set("WWW-Authenticate", `Basic realm="Sitemap Console", charset="UTF-8"`)
		}
		s.writeError(w, http.StatusUnauthorized, "Unauthorized")
	})
}

func (s *Server) isAuthRequired(r *http.Request) bool {
	s.authMu.RLock()
	enabled := s.authEnabled
	s.authMu.RUnlock()

	if !enabled {
		return false
	}

	if r.Method == http.MethodOptions {
		return false
	}

	if _, ok := authBypassPaths[r.URL.Path]; ok {
		return false
	}

	return true
}

func (s *Server) hasBasicCredentials() bool {
	s.authMu.RLock()
	defer s.authMu.RUnlock()
	return s.basicUser != "" && s.passwordHash != ""
}

// authorizeRequest checks the API key, then Basic credentials against the
// bcrypt hash. It returns the name recorded as the author of changes.
func (s *Server) authorizeRequest(r *http.Request) (string, bool) {
	s.authMu.RLock()
	apiKey := s.apiKey
	header := s.authHeader
	username := s.basicUser
	passwordHash := s.passwordHash
	s.authMu.RUnlock()

	// Try API key authentication
	if apiKey != "" {
		if token := extractAPIKey(r, header); token != "" {
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) == 1 {
				return "api-key", true
			}
		}
	}

	// Try Basic Auth
	if username != "" && passwordHash != "" {
		if user, pass, ok := r.BasicAuth(); ok {
			if subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 {
				return "", false
			}
			if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(pass)); err == nil {
				return user, true
			}
		}
	}

	return "", false
}

func extractAPIKey(r *http.Request, header string) string {
	value := strings.TrimSpace(r.Header.Get(header))
	if value == "" && !strings.EqualFold(header, "Authorization") {
		value = strings.TrimSpace(r.Header.Get("Authorization"))
	}
	if value == "" {
		return ""
	}

	parts := strings.Fields(value)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return ""
}
