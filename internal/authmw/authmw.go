// Package authmw guards officer endpoints with a shared bearer token.
package authmw

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/linnemanlabs/go-core/log"
)

// DefaultRealm is advertised in WWW-Authenticate on rejection.
const DefaultRealm = "tanggap-admin"

type guard struct {
	expected []byte
	realm    string
	logger   log.Logger
}

// Option configures BearerToken.
type Option func(*guard)

// WithLogger logs rejected requests. The presented token is never logged.
func WithLogger(l log.Logger) Option {
	return func(g *guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRealm overrides DefaultRealm.
func WithRealm(realm string) Option {
	return func(g *guard) { g.realm = realm }
}

// BearerToken returns middleware that admits requests whose Authorization
// header carries the expected bearer token. The scheme is matched
// case-insensitively, the token in constant time. An empty expected token
// rejects every request.
func BearerToken(token string, opts ...Option) func(http.Handler) http.Handler {
	g := &guard{
		expected: []byte(token),
		realm:    DefaultRealm,
		logger:   log.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				g.reject(w, r, "", "missing or malformed authorization header")
				return
			}
			if len(g.expected) == 0 || subtle.ConstantTimeCompare([]byte(got), g.expected) != 1 {
				g.reject(w, r, "invalid_token", "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (g *guard) reject(w http.ResponseWriter, r *http.Request, code, msg string) {
	challenge := fmt.Sprintf("Bearer realm=%q", g.realm)
	if code != "" {
		challenge += fmt.Sprintf(", error=%q", code)
	}
	w.Header().Set("WWW-Authenticate", challenge)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, "{\"error\":%q}\n", msg)

	g.logger.Warn(r.Context(), "admin request rejected",
		"reason", msg,
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)
}
