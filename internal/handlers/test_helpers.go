package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/srm/internal/auth"
	"github.com/BradenHooton/srm/internal/forms"
	"github.com/BradenHooton/srm/internal/models"
	"github.com/BradenHooton/srm/internal/services"
	pkghttp "github.com/BradenHooton/srm/pkg/http"
)

// NewFormRequest creates a form-encoded request for testing
func NewFormRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// WithURLParams attaches chi route parameters to req
func WithURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// WithAuthContext adds session claims to the request context for testing
// authenticated endpoints
func WithAuthContext(req *http.Request, userID, username, sessionID string) *http.Request {
	claims := &models.SessionClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:      sessionID,
			Subject: userID,
		},
	}
	return req.WithContext(auth.WithSession(req.Context(), claims))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// AssertRedirectWithNotice checks for a 303 to location carrying notice in
// the flash cookie
func AssertRedirectWithNotice(t *testing.T, w *httptest.ResponseRecorder, location, notice string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, w.Code, "Response status mismatch")
	assert.Equal(t, location, w.Header().Get("Location"))
	assert.Contains(t, FlashNotices(t, w), notice)
}

// FlashNotices decodes the flash cookie set on the response
func FlashNotices(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name != auth.FlashCookieName || cookie.Value == "" {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
		if err != nil {
			t.Fatalf("failed to decode flash cookie: %v", err)
		}
		var notices []string
		if err := json.Unmarshal(raw, &notices); err != nil {
			t.Fatalf("failed to decode flash notices: %v", err)
		}
		return notices
	}
	return nil
}

// ResponseCookie returns the named cookie set on the response, or nil
func ResponseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc    func(ctx context.Context, ip, username, password string) (*services.AuthResult, error)
	RegisterFunc func(ctx context.Context, values url.Values, ip string) (*services.AuthResult, forms.FieldErrors, error)
	LogoutFunc   func(ctx context.Context, claims *models.SessionClaims, ip string) error
}

func (m *MockAuthService) Login(ctx context.Context, ip, username, password string) (*services.AuthResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, ip, username, password)
}

func (m *MockAuthService) Register(ctx context.Context, values url.Values, ip string) (*services.AuthResult, forms.FieldErrors, error) {
	if m.RegisterFunc == nil {
		return nil, nil, models.ErrInternalServer
	}
	return m.RegisterFunc(ctx, values, ip)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *models.SessionClaims, ip string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, claims, ip)
}

// MockRecordService implements RecordServiceInterface for testing
type MockRecordService struct {
	ListCustomersFunc   func(ctx context.Context, limit, offset int) ([]*models.Customer, error)
	CustomerRecordFunc  func(ctx context.Context, id string) (*models.CustomerRecord, error)
	UpdateCustomerFunc  func(ctx context.Context, id string, values url.Values, userID string) (*models.Customer, forms.FieldErrors, error)
	UpdateSupplierFunc  func(ctx context.Context, id string, values url.Values, userID string) (*models.Supplier, forms.FieldErrors, error)
	UpdateDetailFunc    func(ctx context.Context, id string, values url.Values, userID string) (*models.Detail, forms.FieldErrors, error)
	UpdateExclusionFunc func(ctx context.Context, id string, values url.Values, userID string) (*models.Exclusion, forms.FieldErrors, error)
	DeleteCustomerFunc  func(ctx context.Context, id, userID string) error
	DeleteSupplierFunc  func(ctx context.Context, id, userID string) error
}

func (m *MockRecordService) ListCustomers(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	if m.ListCustomersFunc == nil {
		return nil, nil
	}
	return m.ListCustomersFunc(ctx, limit, offset)
}

func (m *MockRecordService) CustomerRecord(ctx context.Context, id string) (*models.CustomerRecord, error) {
	if m.CustomerRecordFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.CustomerRecordFunc(ctx, id)
}

func (m *MockRecordService) UpdateCustomer(ctx context.Context, id string, values url.Values, userID string) (*models.Customer, forms.FieldErrors, error) {
	if m.UpdateCustomerFunc == nil {
		return &models.Customer{ID: id}, nil, nil
	}
	return m.UpdateCustomerFunc(ctx, id, values, userID)
}

func (m *MockRecordService) UpdateSupplier(ctx context.Context, id string, values url.Values, userID string) (*models.Supplier, forms.FieldErrors, error) {
	if m.UpdateSupplierFunc == nil {
		return &models.Supplier{ID: id}, nil, nil
	}
	return m.UpdateSupplierFunc(ctx, id, values, userID)
}

func (m *MockRecordService) UpdateDetail(ctx context.Context, id string, values url.Values, userID string) (*models.Detail, forms.FieldErrors, error) {
	if m.UpdateDetailFunc == nil {
		return &models.Detail{ID: id}, nil, nil
	}
	return m.UpdateDetailFunc(ctx, id, values, userID)
}

func (m *MockRecordService) UpdateExclusion(ctx context.Context, id string, values url.Values, userID string) (*models.Exclusion, forms.FieldErrors, error) {
	if m.UpdateExclusionFunc == nil {
		return &models.Exclusion{ID: id}, nil, nil
	}
	return m.UpdateExclusionFunc(ctx, id, values, userID)
}

func (m *MockRecordService) DeleteCustomer(ctx context.Context, id, userID string) error {
	if m.DeleteCustomerFunc == nil {
		return nil
	}
	return m.DeleteCustomerFunc(ctx, id, userID)
}

func (m *MockRecordService) DeleteSupplier(ctx context.Context, id, userID string) error {
	if m.DeleteSupplierFunc == nil {
		return nil
	}
	return m.DeleteSupplierFunc(ctx, id, userID)
}

// MockWizardResetter records the sessions it was asked to drop
type MockWizardResetter struct {
	Deleted    []string
	DeleteFunc func(ctx context.Context, sessionID string) error
}

func (m *MockWizardResetter) Delete(ctx context.Context, sessionID string) error {
	m.Deleted = append(m.Deleted, sessionID)
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, sessionID)
}
