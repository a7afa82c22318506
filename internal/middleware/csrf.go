package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/srm/internal/auth"
	pkghttp "github.com/BradenHooton/srm/pkg/http"
)

// CSRFConfig configures the double-submit cookie check.
type CSRFConfig struct {
	Cookies  auth.CookieConfig
	Lifetime time.Duration
}

// CSRFProtection issues a csrf_token cookie on safe requests and requires
// every POST, PUT, PATCH or DELETE to echo it, either in the X-CSRF-Token
// header or in the csrfmiddlewaretoken form field.
func CSRFProtection(config CSRFConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookieToken, _ := auth.GetCSRFTokenCookie(r)

			if !isStateChangingMethod(r.Method) {
				if cookieToken == "" {
					token, err := auth.GenerateCSRFToken()
					if err != nil {
						logger.Error("failed to issue csrf token", slog.Any("error", err))
						pkghttp.WriteInternalError(w, "Internal server error")
						return
					}
					auth.SetCSRFTokenCookie(w, token, config.Lifetime, config.Cookies)
				}
				next.ServeHTTP(w, r)
				return
			}

			submitted := r.Header.Get(auth.CSRFHeaderName)
			if submitted == "" {
				r.Body = http.MaxBytesReader(w, r.Body, pkghttp.MaxFormBytes)
				submitted = r.PostFormValue(auth.CSRFFieldName)
			}

			if !auth.CSRFTokensMatch(submitted, cookieToken) {
				logger.Warn("CSRF token validation failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Bool("cookie_present", cookieToken != ""),
					slog.Bool("token_present", submitted != ""))
				pkghttp.WriteForbidden(w, "CSRF token missing or invalid")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isStateChangingMethod checks if the HTTP method modifies state
func isStateChangingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}
