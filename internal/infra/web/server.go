package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ecpay-checkout-bot/internal/config"
)

// Server hosts the setup UI: a small form that collects the merchant
// credentials when the config file ships with placeholders, plus /metrics
// and /healthz. Saving a complete credential set closes Ready().
type Server struct {
	cfg  *config.Config
	auth *AuthManager
	log  *zerolog.Logger

	mu        sync.Mutex
	ready     chan struct{}
	readyOnce sync.Once

	httpSrv *http.Server
}

func NewServer(cfg *config.Config, logger *zerolog.Logger) *Server {
	secret := cfg.Web.SessionSecret
	if secret == "" {
		// Sessions do not survive restarts without a configured secret,
		// which is acceptable for a setup UI.
		secret = uuid.NewString()
	}
	return &Server{
		cfg:   cfg,
		auth:  NewAuthManager(secret, cfg.Web.SessionTTL, false),
		log:   logger,
		ready: make(chan struct{}),
	}
}

// Ready is closed once the stored credentials are complete, either from the
// config file or after a successful save through the UI.
func (s *Server) Ready() <-chan struct{} {
	s.mu.Lock()
	if s.cfg.ECPay.Complete() {
		s.markReady()
	}
	s.mu.Unlock()
	return s.ready
}

func (s *Server) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/", s.handleIndex)
	r.Post("/api/login", s.handleLogin)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/api/config", s.handleGetConfig)
		r.Post("/api/config", s.handleSaveConfig)
	})
	return r
}

func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Web.Host, s.cfg.Web.Port)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("setup web UI listening")

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpSrv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "bad request"})
		return
	}
	if s.cfg.Web.AdminPassword == "" {
		s.log.Error().Msg("admin password is not configured")
		writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "setup UI disabled"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(body.Password), []byte(s.cfg.Web.AdminPassword)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "wrong password"})
		return
	}
	if _, err := s.auth.Mint(w); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "session error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// configPayload mirrors the setup form fields.
type configPayload struct {
	MerchantID string `json:"merchant_id"`
	HashKey    string `json:"hash_key"`
	HashIV     string `json:"hash_iv"`
	Sandbox    bool   `json:"use_test_env"`
	ExpireDays int    `json:"expire_days"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	payload := configPayload{
		MerchantID: s.cfg.ECPay.MerchantID,
		Sandbox:    s.cfg.ECPay.Sandbox,
		ExpireDays: s.cfg.ECPay.ExpireDays,
	}
	s.mu.Unlock()
	// Secrets are write-only through this API.
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var body configPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "bad request"})
		return
	}
	if body.MerchantID == "" || body.HashKey == "" || body.HashIV == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "商店代號、HashKey、HashIV 皆為必填"})
		return
	}
	if body.ExpireDays <= 0 || body.ExpireDays > 30 {
		body.ExpireDays = 7
	}

	s.mu.Lock()
	s.cfg.ECPay.MerchantID = body.MerchantID
	s.cfg.ECPay.HashKey = body.HashKey
	s.cfg.ECPay.HashIV = body.HashIV
	s.cfg.ECPay.Sandbox = body.Sandbox
	s.cfg.ECPay.ExpireDays = body.ExpireDays
	complete := s.cfg.ECPay.Complete()
	s.mu.Unlock()

	s.log.Info().Str("merchant_id", body.MerchantID).Bool("sandbox", body.Sandbox).Msg("merchant credentials updated")
	if complete {
		s.markReady()
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "配置已儲存"})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = setupPageTmpl.Execute(w, nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var setupPageTmpl = template.Must(template.New("setup").Parse(`<!DOCTYPE html>
<html lang="zh-TW">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>ECPay Checkout Bot 配置</title>
<style>
body { font-family: Arial, sans-serif; max-width: 720px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
.container { background: white; padding: 30px; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
h1 { color: #333; text-align: center; }
.form-group { margin-bottom: 18px; }
label { display: block; margin-bottom: 5px; font-weight: bold; color: #555; }
input, select { width: 100%; padding: 10px; border: 1px solid #ddd; border-radius: 5px; }
button { background: #007bff; color: white; padding: 12px 30px; border: none; border-radius: 5px; cursor: pointer; }
#alert { padding: 12px; margin: 16px 0; border-radius: 5px; display: none; }
.ok { background: #d4edda; color: #155724; }
.err { background: #f8d7da; color: #721c24; }
</style>
</head>
<body>
<div class="container">
<h1>🤖 ECPay Checkout Bot 配置</h1>
<div id="alert"></div>
<form id="loginForm">
  <div class="form-group">
    <label for="password">管理密碼:</label>
    <input type="password" id="password" required>
  </div>
  <button type="submit">登入</button>
</form>
<form id="configForm" style="display:none">
  <div class="form-group">
    <label for="merchant_id">MerchantID (商店代號):</label>
    <input type="text" id="merchant_id" required>
  </div>
  <div class="form-group">
    <label for="hash_key">HashKey:</label>
    <input type="password" id="hash_key" required>
  </div>
  <div class="form-group">
    <label for="hash_iv">HashIV:</label>
    <input type="password" id="hash_iv" required>
  </div>
  <div class="form-group">
    <label for="use_test_env">使用測試環境:</label>
    <select id="use_test_env">
      <option value="true">是 (測試環境)</option>
      <option value="false">否 (正式環境)</option>
    </select>
  </div>
  <div class="form-group">
    <label for="expire_days">繳費期限 (天):</label>
    <input type="number" id="expire_days" value="7" min="1" max="30">
  </div>
  <button type="submit">💾 儲存配置並啟動Bot</button>
</form>
</div>
<script>
function showAlert(msg, ok) {
  var el = document.getElementById('alert');
  el.textContent = msg;
  el.className = ok ? 'ok' : 'err';
  el.style.display = 'block';
}
document.getElementById('loginForm').addEventListener('submit', async function(e) {
  e.preventDefault();
  var res = await fetch('/api/login', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({password: document.getElementById('password').value})
  });
  var data = await res.json();
  if (data.success) {
    document.getElementById('loginForm').style.display = 'none';
    document.getElementById('configForm').style.display = 'block';
    var cfg = await (await fetch('/api/config')).json();
    document.getElementById('merchant_id').value = cfg.merchant_id || '';
    document.getElementById('use_test_env').value = String(cfg.use_test_env);
    document.getElementById('expire_days').value = cfg.expire_days || 7;
  } else {
    showAlert(data.message || '登入失敗', false);
  }
});
document.getElementById('configForm').addEventListener('submit', async function(e) {
  e.preventDefault();
  var res = await fetch('/api/config', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({
      merchant_id: document.getElementById('merchant_id').value,
      hash_key: document.getElementById('hash_key').value,
      hash_iv: document.getElementById('hash_iv').value,
      use_test_env: document.getElementById('use_test_env').value === 'true',
      expire_days: parseInt(document.getElementById('expire_days').value, 10)
    })
  });
  var data = await res.json();
  showAlert(data.message || (data.success ? '已儲存' : '儲存失敗'), data.success);
});
</script>
</body>
</html>`))
