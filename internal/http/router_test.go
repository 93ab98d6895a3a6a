package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-guard-bot/internal/config"
)

func newOpsEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, config.Config{
		OTEL: config.OTELConfig{ServiceName: "test-svc"},
	})
	return r
}

func TestRegisterRoutes_Health(t *testing.T) {
	r := newOpsEngine(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health body: %s", w.Body.String())
	}
	// Correlation id is attached by the RequestID middleware.
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestRegisterRoutes_Metrics(t *testing.T) {
	r := newOpsEngine(t)

	// Generate one request first so counters exist.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("expected request counters in the exposition")
	}
}

func TestRegisterRoutes_NotFound(t *testing.T) {
	r := newOpsEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not_found") {
		t.Fatalf("unexpected 404 body: %s", w.Body.String())
	}
}

func TestRegisterRoutes_OTELEnabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, config.Config{
		OTEL: config.OTELConfig{Enabled: true, ServiceName: "test-svc"},
	})

	// With no TracerProvider configured the middleware is a pass-through.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
}

func TestNewServer_AppliesTimeouts(t *testing.T) {
	cfg := config.Config{Ops: config.OpsConfig{
		Port:              "9999",
		ReadTimeout:       2 * time.Second,
		ReadHeaderTimeout: 1 * time.Second,
		WriteTimeout:      3 * time.Second,
		IdleTimeout:       4 * time.Second,
	}}

	srv := NewServer(cfg, http.NewServeMux())
	if srv.Addr != ":9999" {
		t.Fatalf("unexpected addr: %q", srv.Addr)
	}
	if srv.ReadTimeout != 2*time.Second ||
		srv.ReadHeaderTimeout != 1*time.Second ||
		srv.WriteTimeout != 3*time.Second ||
		srv.IdleTimeout != 4*time.Second {
		t.Fatalf("timeouts not applied: %+v", srv)
	}
}
