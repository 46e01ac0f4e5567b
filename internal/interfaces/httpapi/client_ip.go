package httpapi

import (
	"net"
	"net/http"
	"strings"
)

// clientIPHeaders are set by the Render/Cloudflare edge in front of the
// service, most specific first.
var clientIPHeaders = []string{"CF-Connecting-IP", "True-Client-IP", "X-Forwarded-For", "X-Real-IP"}

// resolveClientIP prefers edge headers over the socket address. Login
// throttling and request logs key on it.
func resolveClientIP(r *http.Request) string {
	candidates := make([]string, 0, len(clientIPHeaders)+1)
	for _, header := range clientIPHeaders {
		candidates = append(candidates, r.Header.Get(header))
	}
	candidates = append(candidates, r.RemoteAddr)

	for _, candidate := range candidates {
		if ip := normalizeIP(candidate); ip != "" {
			return ip
		}
	}

	return ""
}

func normalizeIP(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if first, _, ok := strings.Cut(value, ","); ok {
		value = strings.TrimSpace(first)
	}

	if host, _, err := net.SplitHostPort(value); err == nil {
		value = strings.TrimSpace(host)
	}

	parsed := net.ParseIP(value)
	if parsed == nil {
		return ""
	}
	return parsed.String()
}
