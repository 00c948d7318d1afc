package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redefine/facility/api/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()

	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/test", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	return w, resp
}

func TestNotFound(t *testing.T) {
	w, resp := perform(t, func(c *gin.Context) {
		NotFound(c, "Ticket not found")
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if resp.Error.Code != ErrNotFound {
		t.Errorf("Expected code %s, got %s", ErrNotFound, resp.Error.Code)
	}
	if resp.Error.RequestID == "" {
		t.Error("Expected request_id in error envelope")
	}
}

func TestPrecondition(t *testing.T) {
	w, resp := perform(t, func(c *gin.Context) {
		Precondition(c, ErrNoInternalLabel, "Property has no internal label")
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", w.Code)
	}
	if resp.Error.Code != ErrNoInternalLabel {
		t.Errorf("Expected code %s, got %s", ErrNoInternalLabel, resp.Error.Code)
	}
}

func TestUpstream(t *testing.T) {
	w, resp := perform(t, func(c *gin.Context) {
		Upstream(c, ErrERP, "Entity directory request failed", errors.New("connection refused"))
	})

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", w.Code)
	}
	if resp.Error.Code != ErrERP {
		t.Errorf("Expected code %s, got %s", ErrERP, resp.Error.Code)
	}
	if resp.Error.Message == "connection refused" {
		t.Error("Upstream error details must not leak to the client message")
	}
}

func TestRenderError_ExposesDetails(t *testing.T) {
	w, resp := perform(t, func(c *gin.Context) {
		RenderError(c, errors.New("font missing"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	if resp.Error.Code != ErrRender {
		t.Errorf("Expected code %s, got %s", ErrRender, resp.Error.Code)
	}
	if resp.Error.Details["details"] != "font missing" {
		t.Errorf("Expected render failure details, got %v", resp.Error.Details)
	}
}

func TestStoreError_HidesCause(t *testing.T) {
	w, resp := perform(t, func(c *gin.Context) {
		StoreError(c, "Failed to store vendor choice", errors.New("pq: connection refused"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	if resp.Error.Code != ErrStoreUpdate {
		t.Errorf("Expected %s, got %s", ErrStoreUpdate, resp.Error.Code)
	}
	if len(resp.Error.Details) != 0 {
		t.Errorf("Expected no details, got %v", resp.Error.Details)
	}
}

func TestInternalServerError_HidesCause(t *testing.T) {
	w, resp := perform(t, func(c *gin.Context) {
		InternalServerError(c, "Failed to update cost table", errors.New("secret dsn"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	if resp.Error.Message != "Failed to update cost table" {
		t.Errorf("Unexpected message: %s", resp.Error.Message)
	}
	if len(resp.Error.Details) != 0 {
		t.Errorf("Expected no details, got %v", resp.Error.Details)
	}
}
