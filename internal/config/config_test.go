package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCatalogBaseURL(t *testing.T) {
	tests := []struct {
		name string
		host string
		port string
		want string
	}{
		{name: "host with scheme", host: "http://catalog.internal", port: "8080", want: "http://catalog.internal:8080"},
		{name: "host without scheme", host: "catalog.internal", port: "9000", want: "http://catalog.internal:9000"},
		{name: "https kept", host: "https://api.example.com", port: "443", want: "https://api.example.com:443"},
		{name: "trailing slash trimmed", host: "http://localhost/", port: "8080", want: "http://localhost:8080"},
		{name: "empty port", host: "http://localhost", port: "", want: "http://localhost"},
		{name: "empty host", host: "", port: "8080", want: "http://localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{CatalogHost: tt.host, CatalogPort: tt.port}
			assert.Equal(t, tt.want, cfg.CatalogBaseURL())
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://catalog")
	t.Setenv("BACKEND_PORT", "9090")
	t.Setenv("RENDER_WAIT_MS", "250")
	t.Setenv("VIEWER_TTL_MINUTES", "5")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("LOAD_LOG_BATCH", "not-a-number")

	cfg := Load()

	assert.Equal(t, "http://catalog:9090", cfg.CatalogBaseURL())
	assert.Equal(t, 250*time.Millisecond, cfg.RenderWait)
	assert.Equal(t, 5*time.Minute, cfg.ViewerTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 100, cfg.LoadLogBatch)
}
