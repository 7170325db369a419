package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/interviewd/errors"
	"github.com/skillsenselab/interviewd/logger"
	"github.com/skillsenselab/interviewd/observability"
	"github.com/skillsenselab/interviewd/server"
)

func newServer(t *testing.T, checker func(ctx context.Context) []observability.Health) *server.Server {
	t.Helper()
	cfg := server.Config{}
	cfg.ApplyDefaults()

	srv := server.New(cfg, logger.NewDefault("test"))
	srv.ApplyDefaults("interviewd", checker)
	return srv
}

func TestConfigDefaults(t *testing.T) {
	cfg := server.Config{}
	cfg.ApplyDefaults()

	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.MaxBodySize != "25MB" {
		t.Errorf("expected default body size 25MB, got %s", cfg.MaxBodySize)
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		t.Error("expected default CORS origins")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := server.Config{Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}

	cfg = server.Config{Port: 8080, ReadTimeout: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative read timeout")
	}

	cfg = server.Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error for defaults: %v", err)
	}
}

func TestHealthEndpoint_AllUp(t *testing.T) {
	srv := newServer(t, func(ctx context.Context) []observability.Health {
		return []observability.Health{
			observability.ProviderHealth("llm", true),
			observability.ProviderHealth("transcription", true),
		}
	})

	rr := httptest.NewRecorder()
	srv.GinEngine().ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Status != "up" {
		t.Errorf("expected status up, got %s", body.Status)
	}
	if body.Service != "interviewd" {
		t.Errorf("expected service interviewd, got %s", body.Service)
	}
}

func TestHealthEndpoint_ComponentDown(t *testing.T) {
	srv := newServer(t, func(ctx context.Context) []observability.Health {
		return []observability.Health{
			observability.ProviderHealth("llm", false),
		}
	})

	rr := httptest.NewRecorder()
	srv.GinEngine().ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestInfoEndpoint(t *testing.T) {
	srv := newServer(t, nil)

	rr := httptest.NewRecorder()
	srv.GinEngine().ServeHTTP(rr, httptest.NewRequest("GET", "/info", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["service"] != "interviewd" {
		t.Errorf("expected service interviewd, got %v", body["service"])
	}
	if body["version"] == nil {
		t.Error("expected version field")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t, nil)

	rr := httptest.NewRecorder()
	srv.GinEngine().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["goroutines"] == nil {
		t.Error("expected goroutines field")
	}
}

func TestStartAndStop(t *testing.T) {
	cfg := server.Config{Port: 0} // ephemeral port
	cfg.ApplyDefaults()
	cfg.Port = 0

	srv := server.New(cfg, logger.NewDefault("test"))
	ctx := context.Background()

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if err := srv.Stop(ctx); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
}

func TestRespondWithError_AppError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/", func(c *gin.Context) {
		server.RespondWithError(c, apperrors.SessionNotFound("abc"))
	})

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Error.Code == "" {
		t.Error("expected structured error code")
	}
}

func TestRespondWithError_GenericError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/", func(c *gin.Context) {
		server.RespondWithError(c, context.DeadlineExceeded)
	})

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestRespondOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/", func(c *gin.Context) {
		server.RespondOK(c, gin.H{"value": 42})
	})

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Data["value"] != float64(42) {
		t.Errorf("expected data envelope, got %v", body.Data)
	}
}
