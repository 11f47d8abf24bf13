package network

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{"peer v4", "203.0.113.9:51234", "", "", "203.0.113.9"},
		{"peer v6", "[2001:db8::7]:443", "", "", "2001:db8::7"},
		{"peer without port", "203.0.113.9", "", "", "203.0.113.9"},
		{"forwarded chain", "10.0.0.2:80", "198.51.100.4, 10.0.0.1", "", "198.51.100.4"},
		{"forwarded skips junk", "10.0.0.2:80", "unknown, 198.51.100.4", "", "198.51.100.4"},
		{"forwarded beats real ip", "10.0.0.2:80", "198.51.100.4", "192.0.2.1", "198.51.100.4"},
		{"real ip", "10.0.0.2:80", "", "192.0.2.1", "192.0.2.1"},
		{"invalid real ip falls back", "10.0.0.2:80", "", "nope", "10.0.0.2"},
		{"v4-mapped v6", "[::ffff:192.0.2.5]:80", "", "", "192.0.2.5"},
		{"unparseable peer kept", "pipe", "", "", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/login", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
