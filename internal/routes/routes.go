package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/srm/internal/auth"
	"github.com/BradenHooton/srm/internal/handlers"
	"github.com/BradenHooton/srm/internal/middleware"
	pkghttp "github.com/BradenHooton/srm/pkg/http"
)

// Handlers groups everything RegisterRoutes mounts
type Handlers struct {
	Auth    *handlers.AuthHandler
	Records *handlers.RecordHandler
	Wizard  *handlers.WizardHandler
	Flash   *handlers.FlashHandler
	Health  *handlers.HealthHandler
}

// RegisterRoutes registers all application routes. The router is expected
// to already carry the session loading middleware.
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	sessions *auth.SessionMiddleware,
	loginRateLimit middleware.RateLimitConfig,
	ipConfig *pkghttp.IPConfig,
) {
	// Public routes
	router.Get("/", h.Records.Home)
	router.Get("/flash", h.Flash.Pop)
	router.Get("/health", h.Health.Check)
	router.With(middleware.RateLimitByIP(loginRateLimit, ipConfig)).Post("/login", h.Auth.Login)
	router.Post("/register", h.Auth.Register)

	// Protected routes - a signed-in session is required
	router.Group(func(r chi.Router) {
		r.Use(sessions.RequireSession)

		r.Post("/logout", h.Auth.Logout)

		r.Get("/customers/{id}", h.Records.GetCustomerRecord)
		r.Post("/customers/{id}", h.Records.UpdateCustomer)
		r.Delete("/customers/{id}", h.Records.DeleteCustomer)
		r.Post("/suppliers/{id}", h.Records.UpdateSupplier)
		r.Delete("/suppliers/{id}", h.Records.DeleteSupplier)
		r.Post("/details/{id}", h.Records.UpdateDetail)
		r.Post("/exclusions/{id}", h.Records.UpdateExclusion)

		r.Get("/wizard", h.Wizard.State)
		r.Post("/wizard/cancel", h.Wizard.Cancel)
		r.Post("/wizard/{step}", h.Wizard.Submit)
	})
}
