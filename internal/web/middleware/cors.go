package middleware

import (
	"net/http"

	"github.com/kozaktomas/face-insight/internal/constants"
)

// CORS returns middleware that lets any origin call the relay. The browser
// client is served from a different origin than the relay, and callers are
// not authenticated, so there is no whitelist. Preflight requests are
// answered here with 200 before routing.
func CORS() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Credentials", constants.CORSAllowCredentials)
			w.Header().Set("Access-Control-Allow-Origin", constants.CORSAllowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", constants.CORSAllowMethods)
			w.Header().Set("Access-Control-Allow-Headers", constants.CORSAllowHeaders)

			// Handle preflight requests.
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders returns middleware that sets Content-Security-Policy and other
// security headers on the embedded page.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Security-Policy",
				"default-src 'self'; img-src 'self' data: blob:; "+
					"style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			next.ServeHTTP(w, r)
		})
	}
}
