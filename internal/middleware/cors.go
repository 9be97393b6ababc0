package middleware

import (
	"net/http"
	"strings"
)

// CORS allows a separately hosted frontend at one of origins (comma
// separated) to call the API with credentials. An empty origins string
// disables CORS headers entirely.
//
// The site's own pages are same-origin and need none of this. It is for a
// frontend deployed elsewhere (FRONTEND_ORIGIN) that calls the API with the
// session cookie. Because credentials are allowed, the allowed origin is
// echoed back exactly; "*" is never sent.
//
// A preflight (OPTIONS with Access-Control-Request-Method) from an allowed
// origin is answered here with 204 and never reaches the router.
func CORS(origins string) func(http.Handler) http.Handler {
	allowed := map[string]bool{}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed[o] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !allowed[origin] {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
