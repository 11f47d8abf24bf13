// Package network resolves the client address recorded on audit events.
package network

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the address of the browser behind r. The console runs
// behind a proxy, so the leftmost valid X-Forwarded-For entry wins, then
// X-Real-IP, then the socket peer. Header values that are not addresses are
// skipped.
func ClientIP(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip, ok := parse(part); ok {
			return ip
		}
	}
	if ip, ok := parse(r.Header.Get("X-Real-IP")); ok {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip, ok := parse(host); ok {
		return ip
	}
	return host
}

func parse(s string) (string, bool) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return "", false
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}
