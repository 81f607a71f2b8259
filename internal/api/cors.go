// ABOUTME: CORS middleware for the auth API
// ABOUTME: Echoes the request Origin and answers preflight requests

package api

import "net/http"

// withCORS adds cross-origin headers to every response and short-circuits
// OPTIONS preflights. The Origin is echoed back (falling back to *) because
// the web frontends are served from per-deployment domains.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "POST,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
