package fetcher

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxBodySize)
	assert.Equal(t, 5, cfg.MaxRedirects)
	assert.True(t, cfg.DenyPrivateIPs)
	assert.Equal(t, BrowserUserAgent, cfg.UserAgent)
	assert.NoError(t, cfg.Validate())
}

func TestContentFetchConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ContentFetchConfig)
	}{
		{"zero timeout", func(c *ContentFetchConfig) { c.Timeout = 0 }},
		{"body too small", func(c *ContentFetchConfig) { c.MaxBodySize = 100 }},
		{"body too large", func(c *ContentFetchConfig) { c.MaxBodySize = 200 * 1024 * 1024 }},
		{"negative redirects", func(c *ContentFetchConfig) { c.MaxRedirects = -1 }},
		{"too many redirects", func(c *ContentFetchConfig) { c.MaxRedirects = 11 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"169.254.169.254", true},
		{"0.0.0.0", true},
		{"::1", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"8.8.8.8", false},
		{"2001:4860:4860::8888", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, isPrivateIP(net.ParseIP(tt.ip)))
		})
	}
}

func TestValidateURL_PrivateLiteral(t *testing.T) {
	assert.ErrorIs(t, validateURL("http://127.0.0.1/admin", true), ErrPrivateIP)
	assert.ErrorIs(t, validateURL("http://169.254.169.254/latest/meta-data", true), ErrPrivateIP)
	assert.NoError(t, validateURL("http://127.0.0.1/admin", false))
}
