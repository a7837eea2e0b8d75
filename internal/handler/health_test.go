package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := New(trace.NewNoopTracerProvider().Tracer("test"), nil, nil, nil)
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if body != "{\"status\":\"healthy\"}\n" && body != "{\"status\":\"healthy\"}" {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestHealthReportsComponents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := New(trace.NewNoopTracerProvider().Tracer("test"), nil, nil, nil)
	h.AddProbe("postgres", func(context.Context) error { return nil })
	h.AddProbe("redis", func(context.Context) error { return errors.New("connection refused") })
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Status != "degraded" || resp.Components["postgres"] != "up" || resp.Components["redis"] != "down" {
		t.Fatalf("unexpected health response: %+v", resp)
	}
}
