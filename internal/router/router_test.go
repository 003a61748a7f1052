package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xrinegade/4ochan/internal/cache"
	"github.com/0xrinegade/4ochan/internal/handler"
	"github.com/0xrinegade/4ochan/internal/identity"
	"github.com/0xrinegade/4ochan/internal/markdown"
	"github.com/0xrinegade/4ochan/internal/relay"
	"github.com/0xrinegade/4ochan/internal/service"
	"github.com/0xrinegade/4ochan/internal/store"
	"github.com/0xrinegade/4ochan/shared/config"
	"github.com/0xrinegade/4ochan/shared/domain"
)

// offlineRouter never opens a pool, so every relay round trip reports not connected.
func offlineRouter(t *testing.T, writesPerMin int) http.Handler {
	t.Helper()
	s := store.NewMemory()
	id, err := identity.Load(s, "")
	require.NoError(t, err)
	mgr, err := relay.NewManager(relay.NewNostrPool, s, relay.Options{
		Defaults: []domain.Relay{{URL: "wss://relay.example", Read: true, Write: true}},
	})
	require.NoError(t, err)
	c := cache.New(s)
	require.NoError(t, c.Load())

	svc := service.New(mgr, c, id, service.Config{})
	return New(handler.New(svc, markdown.New()), config.Http{
		AllowedOrigins: []string{"http://localhost:5173"},
		WritesPerMin:   writesPerMin,
	})
}

func TestRoutes(t *testing.T) {
	r := offlineRouter(t, 30)

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"health", http.MethodGet, "/v1/health", http.StatusOK},
		{"identity", http.MethodGet, "/v1/identity", http.StatusOK},
		{"relays", http.MethodGet, "/v1/relays", http.StatusOK},
		{"relay history", http.MethodGet, "/v1/relays/history", http.StatusOK},
		{"boards offline", http.MethodGet, "/v1/boards", http.StatusServiceUnavailable},
		{"unknown thread offline", http.MethodGet, "/v1/threads/abc", http.StatusServiceUnavailable},
		{"subscriptions", http.MethodGet, "/v1/subscriptions", http.StatusOK},
		{"notifications", http.MethodGet, "/v1/notifications", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"unknown route", http.MethodGet, "/v1/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.want, rr.Code, "expected status code %d, but got %d", tt.want, rr.Code)
		})
	}
}

func TestWriteRoutesAreRateLimited(t *testing.T) {
	r := offlineRouter(t, 1)
	body := []byte(`{"short_name":"g","name":"Technology"}`)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/v1/boards", bytes.NewBuffer(body)))
	assert.Equal(t, http.StatusServiceUnavailable, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/v1/boards", bytes.NewBuffer(body)))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// reads are not limited
	read := httptest.NewRecorder()
	r.ServeHTTP(read, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	assert.Equal(t, http.StatusOK, read.Code)
}

func TestSecurityHeadersAndCORS(t *testing.T) {
	r := offlineRouter(t, 30)

	req := httptest.NewRequest(http.MethodOptions, "/v1/boards", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}
