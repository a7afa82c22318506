package middleware

import (
	"net/http"
	"strings"
)

// SecurityHeadersConfig holds security headers configuration
type SecurityHeadersConfig struct {
	Env string
}

var (
	productionCSP = strings.Join([]string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"font-src 'self'",
		"connect-src 'self'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}, "; ")

	// Development pages are served by a hot-reloading front end.
	developmentCSP = strings.Join([]string{
		"default-src 'self' http: https: ws:",
		"script-src 'self' 'unsafe-inline' 'unsafe-eval' http: https: ws:",
		"style-src 'self' 'unsafe-inline' http: https:",
		"img-src 'self' data: https: http:",
		"connect-src 'self' http: https: ws: wss:",
		"frame-ancestors 'self'",
		"form-action 'self'",
	}, "; ")

	staticSecurityHeaders = map[string]string{
		"X-Frame-Options":              "DENY",
		"X-Content-Type-Options":       "nosniff",
		"Referrer-Policy":              "same-origin",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Permissions-Policy":           "camera=(), geolocation=(), microphone=(), payment=(), usb=()",
		"X-DNS-Prefetch-Control":       "off",
		"Cache-Control":                "no-store",
		"Cross-Origin-Resource-Policy": "same-origin",
	}
)

// SecurityHeaders returns a middleware that adds security headers to all
// responses. Record pages carry personal data, so nothing is cacheable.
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	production := config.Env == "production"
	csp := developmentCSP
	if production {
		csp = productionCSP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := w.Header()
			for name, value := range staticSecurityHeaders {
				header.Set(name, value)
			}
			header.Set("Content-Security-Policy", csp)

			if production && (r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https") {
				header.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
