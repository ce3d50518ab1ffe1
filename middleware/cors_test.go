package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnableCORSAllowedOrigin(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set("Origin", "https://spendly.app")
	rr := httptest.NewRecorder()

	EnableCORS(next).ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://spendly.app" {
		t.Errorf("expected origin to be echoed, got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials header, got %q", got)
	}
}

func TestEnableCORSDisallowedOriginInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()

	EnableCORS(next).ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got == "https://evil.example.com" {
		t.Error("disallowed origin must not be echoed in production")
	}
}

func TestEnableCORSDevelopmentIsPermissive(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()

	EnableCORS(next).ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected dev mode to echo origin, got %q", got)
	}
}

func TestEnableCORSCustomOrigins(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://staging.spendly.app,https://beta.spendly.app")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set("Origin", "https://beta.spendly.app")
	rr := httptest.NewRecorder()

	EnableCORS(next).ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://beta.spendly.app" {
		t.Errorf("expected configured origin to be allowed, got %q", got)
	}
}

func TestEnableCORSPreflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach the handler")
	})

	req := httptest.NewRequest("OPTIONS", "/api/expenses", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()

	EnableCORS(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200 for preflight, got %d", rr.Code)
	}
}
