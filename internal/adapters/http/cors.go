package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Accept, Content-Type, Authorization"
	corsMaxAge       = "86400" // 24 hours
)

// corsPolicy decides which browser origins may call the API. Patterns are
// exact origins ("https://example.com") or host wildcards ("*.example.com").
type corsPolicy struct {
	exact    map[string]struct{}
	suffixes []string // ".example.com"
}

func newCORSPolicy(patterns []string) *corsPolicy {
	p := &corsPolicy{exact: make(map[string]struct{}, len(patterns))}
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if rest, ok := strings.CutPrefix(pattern, "*."); ok {
			p.suffixes = append(p.suffixes, "."+strings.ToLower(rest))
			continue
		}
		if pattern != "" {
			p.exact[pattern] = struct{}{}
		}
	}
	return p
}

// allows reports whether origin matches a pattern. A wildcard matches
// sub.example.com but not example.com itself.
func (p *corsPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := p.exact[origin]; ok {
		return true
	}
	host := strings.ToLower(originHost(origin))
	for _, suffix := range p.suffixes {
		if len(host) > len(suffix) && strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// originHost extracts the host name of an origin, without scheme or port.
func originHost(origin string) string {
	if !strings.Contains(origin, "://") {
		origin = "//" + origin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// corsMiddleware sets CORS headers for allowed origins and answers preflight
// requests without calling the next handler.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	policy := newCORSPolicy(s.config.CORS.AllowedOrigins)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); policy.allows(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
