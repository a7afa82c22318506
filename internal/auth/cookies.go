package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

const (
	SessionCookieName = "session"
	CSRFCookieName    = "csrf_token"
	FlashCookieName   = "flash"
)

// CookieConfig holds cookie configuration settings
type CookieConfig struct {
	Domain   string // Empty string = current host only
	Secure   bool   // HTTPS only
	SameSite string // "strict", "lax", or "none"
}

func (c CookieConfig) cookie(name, value string, maxAge int, httpOnly bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   c.Secure,
		SameSite: parseSameSite(c.SameSite),
	}
	if maxAge > 0 {
		cookie.Expires = time.Now().Add(time.Duration(maxAge) * time.Second)
	}
	return cookie
}

// SetSessionCookie stores the signed session token in an httpOnly cookie.
func SetSessionCookie(w http.ResponseWriter, token string, lifetime time.Duration, config CookieConfig) {
	http.SetCookie(w, config.cookie(SessionCookieName, token, int(lifetime.Seconds()), true))
}

func ClearSessionCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, config.cookie(SessionCookieName, "", -1, true))
}

func GetSessionCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// SetCSRFTokenCookie sets a CSRF token in a readable cookie (not httpOnly)
// so forms and scripts can echo it back.
func SetCSRFTokenCookie(w http.ResponseWriter, csrfToken string, lifetime time.Duration, config CookieConfig) {
	http.SetCookie(w, config.cookie(CSRFCookieName, csrfToken, int(lifetime.Seconds()), false))
}

func GetCSRFTokenCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// AddFlash queues notice for the next page view. Notices already queued on r
// or earlier in this response are kept.
func AddFlash(w http.ResponseWriter, r *http.Request, notice string, config CookieConfig) {
	notices := append(pendingFlash(w, r), notice)

	raw, err := json.Marshal(notices)
	if err != nil {
		return
	}
	dropSetCookie(w, FlashCookieName)
	http.SetCookie(w, config.cookie(FlashCookieName, base64.RawURLEncoding.EncodeToString(raw), 300, true))
}

// PopFlash returns the queued notices and clears them.
func PopFlash(w http.ResponseWriter, r *http.Request, config CookieConfig) []string {
	notices := pendingFlash(w, r)
	if len(notices) > 0 {
		dropSetCookie(w, FlashCookieName)
		http.SetCookie(w, config.cookie(FlashCookieName, "", -1, true))
	}
	return notices
}

// dropSetCookie removes any Set-Cookie header already written for name.
func dropSetCookie(w http.ResponseWriter, name string) {
	lines := w.Header().Values("Set-Cookie")
	w.Header().Del("Set-Cookie")
	for _, line := range lines {
		if cookie, err := http.ParseSetCookie(line); err == nil && cookie.Name == name {
			continue
		}
		w.Header().Add("Set-Cookie", line)
	}
}

// pendingFlash merges the request's notices with any set earlier on w.
func pendingFlash(w http.ResponseWriter, r *http.Request) []string {
	for _, line := range w.Header().Values("Set-Cookie") {
		cookie, err := http.ParseSetCookie(line)
		if err != nil || cookie.Name != FlashCookieName {
			continue
		}
		if cookie.MaxAge < 0 {
			return nil
		}
		return decodeFlashValue(cookie.Value)
	}
	return decodeFlash(r)
}

func decodeFlash(r *http.Request) []string {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil {
		return nil
	}
	return decodeFlashValue(cookie.Value)
}

func decodeFlashValue(value string) []string {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var notices []string
	if err := json.Unmarshal(raw, &notices); err != nil {
		return nil
	}
	return notices
}

// parseSameSite converts string to http.SameSite constant
func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
