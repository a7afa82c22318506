package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/srm/internal/auth"
)

func csrfHandler() http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return CSRFProtection(CSRFConfig{Lifetime: time.Hour}, logger)(okHandler())
}

func TestCSRFProtection_IssuesCookieOnSafeRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CSRFCookieName, cookies[0].Name)
	assert.False(t, cookies[0].HttpOnly)
}

func TestCSRFProtection_KeepsExistingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: "existing"})
	rec := httptest.NewRecorder()

	csrfHandler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Result().Cookies())
}

func TestCSRFProtection_RejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: "token"})
	rec := httptest.NewRecorder()

	csrfHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFProtection_RejectsMismatch(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/customers/1", nil)
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: "token"})
	req.Header.Set(auth.CSRFHeaderName, "other")
	rec := httptest.NewRecorder()

	csrfHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFProtection_AcceptsHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/customers/1", nil)
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: "token"})
	req.Header.Set(auth.CSRFHeaderName, "token")
	rec := httptest.NewRecorder()

	csrfHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFProtection_AcceptsFormFieldAndKeepsBody(t *testing.T) {
	form := url.Values{auth.CSRFFieldName: {"token"}, "username": {"jdoe"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: "token"})

	var username string
	handler := CSRFProtection(CSRFConfig{Lifetime: time.Hour}, slog.New(slog.NewJSONHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username = r.PostFormValue("username")
		}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "jdoe", username)
}
