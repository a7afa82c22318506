package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/BradenHooton/srm/internal/auth"
	"github.com/BradenHooton/srm/internal/forms"
	"github.com/BradenHooton/srm/internal/models"
	"github.com/BradenHooton/srm/internal/services"
	pkghttp "github.com/BradenHooton/srm/pkg/http"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// RecordServiceInterface defines the record operations the handlers need
type RecordServiceInterface interface {
	ListCustomers(ctx context.Context, limit, offset int) ([]*models.Customer, error)
	CustomerRecord(ctx context.Context, id string) (*models.CustomerRecord, error)
	UpdateCustomer(ctx context.Context, id string, values url.Values, userID string) (*models.Customer, forms.FieldErrors, error)
	UpdateSupplier(ctx context.Context, id string, values url.Values, userID string) (*models.Supplier, forms.FieldErrors, error)
	UpdateDetail(ctx context.Context, id string, values url.Values, userID string) (*models.Detail, forms.FieldErrors, error)
	UpdateExclusion(ctx context.Context, id string, values url.Values, userID string) (*models.Exclusion, forms.FieldErrors, error)
	DeleteCustomer(ctx context.Context, id, userID string) error
	DeleteSupplier(ctx context.Context, id, userID string) error
}

// WizardResetter drops a browser's wizard progress
type WizardResetter interface {
	Delete(ctx context.Context, sessionID string) error
}

// RecordHandler serves the landing page, customer records and their updates
type RecordHandler struct {
	service RecordServiceInterface
	wizard  WizardResetter
	cookies auth.CookieConfig
	logger  *slog.Logger
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(service RecordServiceInterface, wizard WizardResetter, cookies auth.CookieConfig, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		service: service,
		wizard:  wizard,
		cookies: cookies,
		logger:  logger,
	}
}

// HomeResponse is the landing page payload
type HomeResponse struct {
	Authenticated bool               `json:"authenticated"`
	Username      string             `json:"username,omitempty"`
	Customers     []*models.Customer `json:"customers"`
}

// Home handles GET /. Anonymous visitors get an empty list.
func (h *RecordHandler) Home(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteJSON(w, http.StatusOK, HomeResponse{Customers: []*models.Customer{}})
		return
	}

	limit, offset, err := pagination(r.URL.Query())
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	customers, err := h.service.ListCustomers(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to list customers")
		return
	}
	if customers == nil {
		customers = []*models.Customer{}
	}

	pkghttp.WriteJSON(w, http.StatusOK, HomeResponse{
		Authenticated: true,
		Username:      claims.Username,
		Customers:     customers,
	})
}

// GetCustomerRecord handles GET /customers/{id}
func (h *RecordHandler) GetCustomerRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	record, err := h.service.CustomerRecord(r.Context(), id)
	if err != nil {
		writeRecordError(w, err, "Customer not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, record)
}

// UpdateCustomer handles POST /customers/{id}
func (h *RecordHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "Customer", func(ctx context.Context, id string, values url.Values, userID string) (forms.FieldErrors, error) {
		_, fieldErrors, err := h.service.UpdateCustomer(ctx, id, values, userID)
		return fieldErrors, err
	}, services.CustomerUpdatedNotice)
}

// UpdateSupplier handles POST /suppliers/{id}. A successful update also
// abandons any wizard run in progress for this browser.
func (h *RecordHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "Supplier", func(ctx context.Context, id string, values url.Values, userID string) (forms.FieldErrors, error) {
		_, fieldErrors, err := h.service.UpdateSupplier(ctx, id, values, userID)
		if err != nil {
			return fieldErrors, err
		}
		if claims := auth.GetSessionFromContext(r); claims != nil {
			if err := h.wizard.Delete(ctx, claims.SessionID()); err != nil {
				h.logger.Warn("failed to clear wizard session", slog.String("user_id", claims.UserID), slog.Any("error", err))
			}
		}
		return nil, nil
	}, services.SupplierUpdatedNotice)
}

// UpdateDetail handles POST /details/{id}
func (h *RecordHandler) UpdateDetail(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "Detail", func(ctx context.Context, id string, values url.Values, userID string) (forms.FieldErrors, error) {
		_, fieldErrors, err := h.service.UpdateDetail(ctx, id, values, userID)
		return fieldErrors, err
	}, services.DetailUpdatedNotice)
}

// UpdateExclusion handles POST /exclusions/{id}
func (h *RecordHandler) UpdateExclusion(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "Exclusion", func(ctx context.Context, id string, values url.Values, userID string) (forms.FieldErrors, error) {
		_, fieldErrors, err := h.service.UpdateExclusion(ctx, id, values, userID)
		return fieldErrors, err
	}, services.ExclusionUpdatedNotice)
}

// DeleteCustomer handles DELETE /customers/{id}
func (h *RecordHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "Customer", h.service.DeleteCustomer, services.CustomerDeletedNotice)
}

// DeleteSupplier handles DELETE /suppliers/{id}
func (h *RecordHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "Supplier", h.service.DeleteSupplier, services.SupplierDeletedNotice)
}

type updateFunc func(ctx context.Context, id string, values url.Values, userID string) (forms.FieldErrors, error)

func (h *RecordHandler) update(w http.ResponseWriter, r *http.Request, recordType string, fn updateFunc, notice string) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	values, err := pkghttp.ParseForm(w, r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid form body")
		return
	}

	fieldErrors, err := fn(r.Context(), id, values, sessionUserID(r))
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			pkghttp.WriteValidationErrors(w, recordType+" form has errors.", fieldErrors)
			return
		}
		writeRecordError(w, err, recordType+" not found")
		return
	}

	redirectWithNotice(w, r, h.cookies, "/", notice)
}

func (h *RecordHandler) remove(w http.ResponseWriter, r *http.Request, recordType string, fn func(ctx context.Context, id, userID string) error, notice string) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	if err := fn(r.Context(), id, sessionUserID(r)); err != nil {
		writeRecordError(w, err, recordType+" not found")
		return
	}

	auth.AddFlash(w, r, notice, h.cookies)
	w.WriteHeader(http.StatusNoContent)
}

// recordID reads the {id} path parameter. Anything that is not a UUID
// cannot name a record and is answered with 404.
func recordID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		pkghttp.WriteNotFound(w, "Record not found")
		return "", false
	}
	return id, true
}

func sessionUserID(r *http.Request) string {
	if claims := auth.GetSessionFromContext(r); claims != nil {
		return claims.UserID
	}
	return ""
}

func writeRecordError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, notFound)
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

func pagination(query url.Values) (int, int, error) {
	limit := defaultPageSize
	offset := 0

	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		limit = min(parsed, maxPageSize)
	}

	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
		offset = parsed
	}

	return limit, offset, nil
}
