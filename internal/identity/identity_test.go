package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PabloGalante/zap-agent/internal/identity"
)

func TestMiddlewareRequiredRejectsMissingToken(t *testing.T) {
	handler := identity.Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
}

func TestMiddlewareStoresOpaqueToken(t *testing.T) {
	var seen string
	handler := identity.Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = identity.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with a token, got %d", w.Code)
	}
	if seen != "token-abc" {
		t.Errorf("context token = %q, want the bearer token verbatim", seen)
	}
}

func TestMiddlewareOptionalPassesWithoutToken(t *testing.T) {
	handler := identity.Middleware(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity.UserFromContext(r.Context()) != "" {
			t.Error("expected no user in context without a token")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
