package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/premierlux/premierlux-backend/pkg/errors"
	"github.com/premierlux/premierlux-backend/pkg/scope"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	JSON(rec, http.StatusOK, map[string]string{"name": "Shampoo"})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %v, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %v", ct)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if !resp.Success {
		t.Error("Success = false, want true")
	}
}

func TestError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()

	Error(rec, errors.NotFound("inventory item"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %v, want 404", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Success {
		t.Error("Success = true, want false")
	}
	if resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("Error = %+v, want NOT_FOUND", resp.Error)
	}
}

func TestError_UnknownErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()

	Error(rec, fmt.Errorf("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %v, want 500", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("Error = %+v, want INTERNAL_ERROR", resp.Error)
	}
	// Internal details must not leak to clients.
	if resp.Error.Message == "pq: connection refused" {
		t.Error("raw error message leaked to the response")
	}
}

func TestValidate(t *testing.T) {
	type input struct {
		Name     string `validate:"required"`
		Quantity int    `validate:"gt=0"`
	}

	if err := Validate(&input{Name: "Shampoo", Quantity: 5}); err != nil {
		t.Errorf("Validate() on valid input = %v", err)
	}

	err := Validate(&input{})
	if err == nil {
		t.Fatal("Validate() on invalid input should error")
	}

	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %v", appErr.Code)
	}
	if appErr.Details["Name"] != "this field is required" {
		t.Errorf("Details[Name] = %v", appErr.Details["Name"])
	}
	if appErr.Details["Quantity"] != "must be greater than 0" {
		t.Errorf("Details[Quantity] = %v", appErr.Details["Quantity"])
	}
}

func TestScopeMiddleware(t *testing.T) {
	var captured *scope.Scope
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = scope.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := ScopeMiddleware(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/items", nil)
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("X-User-Name", "Dana")
	req.Header.Set("X-User-Role", "staff")
	req.Header.Set("X-User-Branch", "Downtown")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}
	if captured == nil {
		t.Fatal("scope missing from request context")
	}
	if captured.UserID != "user-1" || captured.Role != "staff" || captured.Branch != "Downtown" {
		t.Errorf("scope = %+v", captured)
	}
}

func TestScopeMiddleware_MissingIdentity(t *testing.T) {
	handler := ScopeMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without identity")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/items", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %v, want 401", rec.Code)
	}
}

func TestScopeMiddleware_HealthExempt(t *testing.T) {
	called := false
	handler := ScopeMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("health check should pass through without identity")
	}
}

func TestRequestID(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	// Generated when absent
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if captured == "" {
		t.Error("request ID should be generated")
	}
	if rec.Header().Get("X-Request-ID") != captured {
		t.Error("request ID should be echoed in the response header")
	}

	// Propagated when present
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if captured != "req-123" {
		t.Errorf("request ID = %v, want req-123", captured)
	}
}
