package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"role":"` + r.Header.Get("X-Role-Name") + `"}`))
	})
}

func secCfg() SecConfig {
	return SecConfig{
		BackendKeys:  map[string]struct{}{"bk": {}},
		FrontendKeys: map[string]struct{}{"fk": {}},
		RPS:          1000,
		Burst:        1000,
	}
}

func TestGatewayRejectsMissingKey(t *testing.T) {
	h := GatewayMiddleware(secCfg())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/unread", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401; got %d", rr.Code)
	}
}

func TestGatewayResolvesRoles(t *testing.T) {
	h := GatewayMiddleware(secCfg())(okHandler())

	cases := []struct {
		key  string
		role string
	}{
		{"bk", "backend"},
		{"fk", "frontend"},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/v1/unread", nil)
		req.Header.Set("X-API-Key", c.key)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("key %s: expected 200; got %d", c.key, rr.Code)
		}
		want := `{"role":"` + c.role + `"}`
		if rr.Body.String() != want {
			t.Fatalf("key %s: expected %s; got %s", c.key, want, rr.Body.String())
		}
	}
}

func TestGatewayAcceptsBearer(t *testing.T) {
	h := GatewayMiddleware(secCfg())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/unread", nil)
	req.Header.Set("Authorization", "Bearer bk")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200; got %d", rr.Code)
	}
}

func TestGatewayRejectsUnknownKey(t *testing.T) {
	h := GatewayMiddleware(secCfg())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/unread", nil)
	req.Header.Set("X-API-Key", "nope")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown key; got %d", rr.Code)
	}
}

func TestGatewayAllowUnauth(t *testing.T) {
	cfg := secCfg()
	cfg.AllowUnauth = true
	h := GatewayMiddleware(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/unread", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with allow_unauth; got %d", rr.Code)
	}
	if rr.Body.String() != `{"role":"unauth"}` {
		t.Fatalf("expected unauth role; got %s", rr.Body.String())
	}
}

func TestGatewayHealthBypassesAuth(t *testing.T) {
	h := GatewayMiddleware(secCfg())(okHandler())

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 without key; got %d", path, rr.Code)
		}
	}
}

func TestGatewayIPWhitelist(t *testing.T) {
	cfg := secCfg()
	cfg.IPWhitelist = []string{"10.1.1.1"}
	h := GatewayMiddleware(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/unread", nil)
	req.RemoteAddr = "192.0.2.7:50000"
	req.Header.Set("X-API-Key", "bk")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 off-whitelist; got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/unread", nil)
	req.RemoteAddr = "10.1.1.1:50000"
	req.Header.Set("X-API-Key", "bk")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on-whitelist; got %d", rr.Code)
	}
}

func TestGatewayRateLimits(t *testing.T) {
	cfg := secCfg()
	cfg.RPS = 1
	cfg.Burst = 2
	h := GatewayMiddleware(cfg)(okHandler())

	hit := func() int {
		req := httptest.NewRequest(http.MethodGet, "/v1/unread", nil)
		req.Header.Set("X-API-Key", "bk")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if hit() != http.StatusOK || hit() != http.StatusOK {
		t.Fatalf("burst requests should pass")
	}
	if hit() != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst")
	}
}

func TestResolveIdentityNormalizes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/unread", nil)
	req.Header.Set(IdentityHeader, "  Alice ")

	id, status, _ := ResolveIdentity(req)
	if status != 0 {
		t.Fatalf("expected resolution; got status %d", status)
	}
	if id != "alice" {
		t.Fatalf("expected normalized identity; got %q", id)
	}
}

func TestResolveIdentityQueryFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/ws/unread?identity=Bob", nil)

	id, status, _ := ResolveIdentity(req)
	if status != 0 {
		t.Fatalf("expected resolution; got status %d", status)
	}
	if id != "bob" {
		t.Fatalf("expected bob; got %q", id)
	}
}

func TestResolveIdentityMissingAndInvalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/unread", nil)
	if _, status, _ := ResolveIdentity(req); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing identity; got %d", status)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/unread", nil)
	req.Header.Set(IdentityHeader, "a:b")
	if _, status, _ := ResolveIdentity(req); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid identity; got %d", status)
	}
}
