package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/srm/internal/auth"
	"github.com/BradenHooton/srm/internal/models"
	"github.com/BradenHooton/srm/internal/wizard"
	pkghttp "github.com/BradenHooton/srm/pkg/http"
)

const wizardPath = "/wizard"

// WizardHandler drives the record creation wizard for the signed-in browser
type WizardHandler struct {
	machine  *wizard.Machine
	sessions *wizard.SessionStore
	cookies  auth.CookieConfig
	logger   *slog.Logger
}

// NewWizardHandler creates a new WizardHandler
func NewWizardHandler(machine *wizard.Machine, sessions *wizard.SessionStore, cookies auth.CookieConfig, logger *slog.Logger) *WizardHandler {
	return &WizardHandler{
		machine:  machine,
		sessions: sessions,
		cookies:  cookies,
		logger:   logger,
	}
}

// WizardStateResponse describes where the browser is in the flow
type WizardStateResponse struct {
	CurrentStep wizard.Step   `json:"current_step"`
	Completed   []wizard.Step `json:"completed"`
	Steps       []wizard.Step `json:"steps"`
	CustomerID  string        `json:"customer_id,omitempty"`
	SupplierID  string        `json:"supplier_id,omitempty"`
}

// State handles GET /wizard
func (h *WizardHandler) State(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	session, err := h.sessions.Load(r.Context(), claims.SessionID())
	if err != nil {
		h.logger.Error("failed to load wizard session", slog.String("user_id", claims.UserID), slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Failed to load wizard")
		return
	}

	completed := session.Completed
	if completed == nil {
		completed = []wizard.Step{}
	}

	pkghttp.WriteJSON(w, http.StatusOK, WizardStateResponse{
		CurrentStep: h.machine.Current(session),
		Completed:   completed,
		Steps:       wizard.Steps,
		CustomerID:  session.PendingCustomerID,
		SupplierID:  session.PendingSupplierID,
	})
}

// Submit handles POST /wizard/{step}
func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	step, err := wizard.ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		pkghttp.WriteNotFound(w, "Unknown wizard step")
		return
	}

	values, err := pkghttp.ParseForm(w, r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid form body")
		return
	}

	ctx := r.Context()
	sessionID := claims.SessionID()

	session, err := h.sessions.Load(ctx, sessionID)
	if err != nil {
		h.logger.Error("failed to load wizard session", slog.String("user_id", claims.UserID), slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Failed to load wizard")
		return
	}

	result, err := h.machine.SubmitStep(ctx, session, step, values)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrValidation):
		pkghttp.WriteValidationErrors(w, result.Notice, result.Errors)
		return
	case errors.Is(err, models.ErrMissingPrerequisite):
		// the machine has already reset the session
		if err := h.sessions.Save(ctx, sessionID, session); err != nil {
			h.logger.Warn("failed to reset wizard session", slog.String("user_id", claims.UserID), slog.Any("error", err))
		}
		redirectWithNotice(w, r, h.cookies, wizardPath, result.Notice)
		return
	case errors.Is(err, models.ErrStepOutOfOrder):
		redirectWithNotice(w, r, h.cookies, wizardPath, result.Notice)
		return
	default:
		h.logger.Error("wizard step failed",
			slog.String("user_id", claims.UserID),
			slog.String("step", step.String()),
			slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Failed to save "+step.String())
		return
	}

	if err := h.sessions.Save(ctx, sessionID, session); err != nil {
		h.logger.Error("failed to save wizard session", slog.String("user_id", claims.UserID), slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Failed to save wizard progress")
		return
	}

	target := wizardPath
	if result.Done() {
		target = "/"
	}
	redirectWithNotice(w, r, h.cookies, target, result.Notice)
}

// Cancel handles POST /wizard/cancel. Records already stored are kept.
func (h *WizardHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if err := h.sessions.Delete(r.Context(), claims.SessionID()); err != nil {
		h.logger.Error("failed to cancel wizard", slog.String("user_id", claims.UserID), slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Failed to cancel wizard")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
