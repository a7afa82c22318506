package http

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
)

// MaxFormBytes caps the size of a form-encoded request body.
const MaxFormBytes = 1 << 20

// IPConfig holds the proxies whose forwarding headers are believed.
type IPConfig struct {
	trusted []netip.Prefix
}

// NewIPConfig parses trustedProxies as CIDR ranges. A bare address is
// treated as a single-host range.
func NewIPConfig(trustedProxies []string) (*IPConfig, error) {
	config := &IPConfig{}
	for _, raw := range trustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
			}
			config.trusted = append(config.trusted, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
		}
		config.trusted = append(config.trusted, prefix.Masked())
	}
	return config, nil
}

// ExtractClientIP returns the address the login guard keys on.
// X-Forwarded-For and X-Real-IP are only honoured when the direct peer is a
// trusted proxy, otherwise any client could pick its own identity.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := remoteAddr(r)

	if config == nil || !config.trusts(remoteIP) {
		return remoteIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, ip := range strings.Split(xff, ",") {
			ip = strings.TrimSpace(ip)
			if _, err := netip.ParseAddr(ip); err == nil {
				return ip
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if _, err := netip.ParseAddr(xri); err == nil {
			return xri
		}
	}

	return remoteIP
}

// remoteAddr strips the port from RemoteAddr.
func remoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

func (c *IPConfig) trusts(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range c.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ParseForm reads a form-encoded body of at most MaxFormBytes and returns
// the posted values. Query parameters are not included.
func ParseForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}
	return r.PostForm, nil
}
