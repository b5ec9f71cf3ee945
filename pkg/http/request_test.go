package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func requestFrom(remoteAddr string, headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = remoteAddr
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestExtractClientIP_DirectConnection(t *testing.T) {
	r := requestFrom("203.0.113.7:51234", nil)

	ip := ExtractClientIP(r, nil)

	assert.Equal(t, "203.0.113.7", ip)
}

func TestExtractClientIP_UntrustedPeerHeadersIgnored(t *testing.T) {
	r := requestFrom("203.0.113.7:51234", map[string]string{
		"X-Forwarded-For": "10.0.0.1",
		"X-Real-IP":       "10.0.0.2",
	})

	ip := ExtractClientIP(r, &IPConfig{TrustedProxies: []string{"192.168.0.0/16"}})

	assert.Equal(t, "203.0.113.7", ip)
}

func TestExtractClientIP_TrustedProxyForwardedFor(t *testing.T) {
	r := requestFrom("192.168.1.10:443", map[string]string{
		"X-Forwarded-For": "203.0.113.7, 192.168.1.10",
	})

	ip := ExtractClientIP(r, &IPConfig{TrustedProxies: []string{"192.168.0.0/16"}})

	assert.Equal(t, "203.0.113.7", ip)
}

func TestExtractClientIP_TrustedProxyRealIPFallback(t *testing.T) {
	r := requestFrom("192.168.1.10:443", map[string]string{
		"X-Real-IP": "203.0.113.7",
	})

	ip := ExtractClientIP(r, &IPConfig{TrustedProxies: []string{"192.168.0.0/16"}})

	assert.Equal(t, "203.0.113.7", ip)
}

func TestExtractClientIP_InvalidForwardedEntriesSkipped(t *testing.T) {
	r := requestFrom("192.168.1.10:443", map[string]string{
		"X-Forwarded-For": "not-an-ip, 203.0.113.7",
	})

	ip := ExtractClientIP(r, &IPConfig{TrustedProxies: []string{"192.168.0.0/16"}})

	assert.Equal(t, "203.0.113.7", ip)
}
