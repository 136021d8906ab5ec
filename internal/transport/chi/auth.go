package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/nyaybodh/nyaybodh/internal/logger"
)

// DefaultPublicPaths stay reachable without a key for health checks and metric scrapers.
var DefaultPublicPaths = []string{"/health", "/metrics"}

const (
	apiKeyHeader = "X-API-Key"
	bearerPrefix = "Bearer "
	authRealm    = `Bearer realm="nyaybodh"`
)

// AuthConfig selects the gateway keys and the paths served without one.
type AuthConfig struct {
	APIKeys []string
	// PublicPaths replaces DefaultPublicPaths when non-nil. An empty slice protects every route.
	PublicPaths []string
}

// keyAuth holds the resolved key set and public routes.
type keyAuth struct {
	keys   [][]byte
	public map[string]struct{}
}

func newKeyAuth(cfg AuthConfig) *keyAuth {
	a := &keyAuth{public: make(map[string]struct{})}
	seen := make(map[string]struct{}, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		a.keys = append(a.keys, []byte(k))
	}

	public := cfg.PublicPaths
	if public == nil {
		public = DefaultPublicPaths
	}
	for _, p := range public {
		if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
			a.public[p] = struct{}{}
		}
	}
	return a
}

func (a *keyAuth) isPublic(path string) bool {
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	_, ok := a.public[path]
	return ok
}

// valid compares against every key so timing does not reveal which one matched.
func (a *keyAuth) valid(token string) bool {
	match := 0
	for _, k := range a.keys {
		match |= subtle.ConstantTimeCompare(k, []byte(token))
	}
	return match == 1
}

// credential extracts the presented key. X-API-Key wins over Authorization.
func credential(r *http.Request) (token, problem string) {
	if k := strings.TrimSpace(r.Header.Get(apiKeyHeader)); k != "" {
		return k, ""
	}
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing authorization header"
	}
	if len(auth) < len(bearerPrefix) || !strings.EqualFold(auth[:len(bearerPrefix)], bearerPrefix) {
		return "", "authorization header must use Bearer scheme"
	}
	token = strings.TrimSpace(auth[len(bearerPrefix):])
	if token == "" {
		return "", "empty bearer token"
	}
	return token, ""
}

// APIKeyAuth rejects gateway requests that carry no configured key, either as
// "Authorization: Bearer <key>" or in X-API-Key. With no keys configured every request passes.
func APIKeyAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	a := newKeyAuth(cfg)

	return func(next http.Handler) http.Handler {
		if len(a.keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a.isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, problem := credential(r)
			if problem == "" && !a.valid(token) {
				problem = "invalid api key"
			}
			if problem != "" {
				logpkg.From(r.Context()).Info("gateway request rejected",
					zap.String("path", r.URL.Path),
					zap.String("reason", problem),
				)
				w.Header().Set("WWW-Authenticate", authRealm)
				writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, problem)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
