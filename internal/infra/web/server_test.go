//go:build !integration

package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ecpay-checkout-bot/internal/config"
)

func newTestServer(t *testing.T, cfg *config.Config) (*Server, http.Handler) {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	if cfg.Web.AdminPassword == "" {
		cfg.Web.AdminPassword = "secret"
	}
	if cfg.Web.SessionTTL == 0 {
		cfg.Web.SessionTTL = 30 * time.Minute
	}
	logger := zerolog.Nop()
	srv := NewServer(cfg, &logger)
	return srv, srv.Router()
}

func login(t *testing.T, handler http.Handler, password string) []*http.Cookie {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	return rec.Result().Cookies()
}

func TestLogin(t *testing.T) {
	_, handler := newTestServer(t, nil)

	t.Run("wrong password", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"password": "nope"})
		req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("correct password sets session cookie", func(t *testing.T) {
		cookies := login(t, handler, "secret")
		found := false
		for _, c := range cookies {
			if c.Name == sessionCookie && c.Value != "" {
				found = true
			}
		}
		if !found {
			t.Error("session cookie not set")
		}
	})
}

func TestConfigAPI_RequiresSession(t *testing.T) {
	_, handler := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestConfigAPI_GetHidesSecrets(t *testing.T) {
	cfg := &config.Config{}
	cfg.ECPay = config.ECPayConfig{MerchantID: "2000132", HashKey: "k", HashIV: "v", ExpireDays: 7}
	_, handler := newTestServer(t, cfg)
	cookies := login(t, handler, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["merchant_id"] != "2000132" {
		t.Errorf("merchant_id = %v", payload["merchant_id"])
	}
	if payload["hash_key"] != "" || payload["hash_iv"] != "" {
		t.Errorf("secrets leaked: %v", payload)
	}
}

func TestConfigAPI_SaveCompletesSetup(t *testing.T) {
	cfg := &config.Config{}
	cfg.Web.Enabled = true
	srv, handler := newTestServer(t, cfg)
	cookies := login(t, handler, "secret")

	select {
	case <-srv.Ready():
		t.Fatal("setup should not be ready before credentials are saved")
	default:
	}

	body, _ := json.Marshal(configPayload{
		MerchantID: "2000132",
		HashKey:    "5294y06JbISpM5x9",
		HashIV:     "v77hoKGq4kWxNNIS",
		Sandbox:    true,
		ExpireDays: 10,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	select {
	case <-srv.Ready():
	case <-time.After(time.Second):
		t.Fatal("Ready() should close after a complete save")
	}
	if !cfg.ECPay.Sandbox || cfg.ECPay.ExpireDays != 10 {
		t.Errorf("config not applied: %+v", cfg.ECPay)
	}
}

func TestConfigAPI_SaveRejectsMissingFields(t *testing.T) {
	_, handler := newTestServer(t, nil)
	cookies := login(t, handler, "secret")

	body, _ := json.Marshal(configPayload{MerchantID: "2000132"})
	req := httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestReady_ImmediateWhenComplete(t *testing.T) {
	cfg := &config.Config{}
	cfg.ECPay = config.ECPayConfig{MerchantID: "2000132", HashKey: "k", HashIV: "v"}
	srv, _ := newTestServer(t, cfg)

	select {
	case <-srv.Ready():
	case <-time.After(time.Second):
		t.Fatal("Ready() should be closed for a complete config")
	}
}

func TestIndexAndHealth(t *testing.T) {
	_, handler := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "configForm") {
		t.Errorf("index status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, handler := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d", rec.Code)
	}
}
