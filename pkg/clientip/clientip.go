package clientip

import (
	"net"
	"net/http"
	"strings"
)

// headers are checked in priority order before falling back to the remote address.
var headers = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP returns the client IP for a request with the given headers and remote
// address. When no valid IP is found the raw remote address is returned.
func GetIP(h http.Header, remoteAddr string) string {
	for _, name := range headers {
		value := h.Get(name)
		if value == "" {
			continue
		}
		// X-Forwarded-For: client, proxy1, proxy2
		if i := strings.IndexByte(value, ','); i >= 0 {
			value = value[:i]
		}
		if ip := normalize(value); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	if ip := normalize(host); ip != "" {
		return ip
	}
	return remoteAddr
}

// GetIPFromRequest is GetIP for a net/http request.
func GetIPFromRequest(r *http.Request) string {
	return GetIP(r.Header, r.RemoteAddr)
}

func normalize(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
