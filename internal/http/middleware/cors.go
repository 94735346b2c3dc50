package middleware

import (
	"net/http"
	"strings"
)

// CORS provides an allowlist-based CORS middleware.
// If allowedOrigins contains "*", any Origin is echoed back. A non-nil
// dynamic check is consulted for origins not on the static list.
func CORS(allowedOrigins []string, dynamic func(origin string) bool) func(http.Handler) http.Handler {
	allowAny := false
	allow := map[string]struct{}{}
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAny = true
			continue
		}
		allow[origin] = struct{}{}
	}

	allowedHeaders := "Authorization, Content-Type, X-Request-ID"
	allowedMethods := "GET, POST, PUT, PATCH, DELETE, OPTIONS"

	isAllowed := func(origin string) bool {
		if allowAny {
			return true
		}
		if _, ok := allow[origin]; ok {
			return true
		}
		return dynamic != nil && dynamic(origin)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			w.Header().Add("Vary", "Origin")
			if origin != "" && isAllowed(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
				w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
				w.Header().Set("Access-Control-Max-Age", "600")
			}

			// Handle preflight requests.
			if r.Method == http.MethodOptions && origin != "" && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
