package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BradenHooton/srm/internal/auth"
	"github.com/BradenHooton/srm/internal/forms"
	"github.com/BradenHooton/srm/internal/models"
	"github.com/BradenHooton/srm/internal/services"
	pkghttp "github.com/BradenHooton/srm/pkg/http"
)

const requiredFieldError = "This field is required."

// AuthServiceInterface defines the interface for account business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, ip, username, password string) (*services.AuthResult, error)
	Register(ctx context.Context, values url.Values, ip string) (*services.AuthResult, forms.FieldErrors, error)
	Logout(ctx context.Context, claims *models.SessionClaims, ip string) error
}

// AuthHandler handles login, logout and registration form posts
type AuthHandler struct {
	service         AuthServiceInterface
	ipConfig        *pkghttp.IPConfig
	cookies         auth.CookieConfig
	sessionLifetime time.Duration
	logger          *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig, cookies auth.CookieConfig, sessionLifetime time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:         service,
		ipConfig:        ipConfig,
		cookies:         cookies,
		sessionLifetime: sessionLifetime,
		logger:          logger,
	}
}

// Login handles POST /login. Every outcome the user can act on is a 303 back
// to the landing page with a notice; only malformed posts get a JSON body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	values, err := pkghttp.ParseForm(w, r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid form body")
		return
	}

	username := strings.TrimSpace(values.Get("username"))
	password := values.Get("password")

	fieldErrors := forms.FieldErrors{}
	if username == "" {
		fieldErrors.Add("username", requiredFieldError)
	}
	if password == "" {
		fieldErrors.Add("password", requiredFieldError)
	}
	if !fieldErrors.Empty() {
		pkghttp.WriteValidationErrors(w, "Login form has errors.", fieldErrors)
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.Login(r.Context(), ip, username, password)
	if err != nil {
		var failure *services.LoginFailure
		if errors.As(err, &failure) {
			redirectWithNotice(w, r, h.cookies, "/", failure.Notice)
			return
		}
		pkghttp.WriteInternalError(w, "Failed to log in")
		return
	}

	auth.SetSessionCookie(w, result.Token, h.sessionLifetime, h.cookies)
	redirectWithNotice(w, r, h.cookies, "/", result.Notice)
}

// Register handles POST /register. A valid registration logs the new user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	values, err := pkghttp.ParseForm(w, r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid form body")
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, fieldErrors, err := h.service.Register(r.Context(), values, ip)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			pkghttp.WriteValidationErrors(w, "Registration form has errors.", fieldErrors)
			return
		}
		pkghttp.WriteInternalError(w, "Failed to register")
		return
	}

	auth.SetSessionCookie(w, result.Token, h.sessionLifetime, h.cookies)
	redirectWithNotice(w, r, h.cookies, "/", result.Notice)
}

// Logout handles POST /logout. The form must carry confirm_logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	values, err := pkghttp.ParseForm(w, r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid form body")
		return
	}
	if _, ok := values["confirm_logout"]; !ok {
		pkghttp.WriteBadRequest(w, "Logout must be confirmed")
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)

	if err := h.service.Logout(r.Context(), claims, ip); err != nil {
		pkghttp.WriteInternalError(w, "Failed to log out")
		return
	}

	auth.ClearSessionCookie(w, h.cookies)
	redirectWithNotice(w, r, h.cookies, "/", services.LogoutNotice)
}

// redirectWithNotice queues notice for the next page and answers 303.
func redirectWithNotice(w http.ResponseWriter, r *http.Request, cookies auth.CookieConfig, target, notice string) {
	if notice != "" {
		auth.AddFlash(w, r, notice, cookies)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
