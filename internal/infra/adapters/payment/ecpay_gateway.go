// File: internal/infra/adapters/payment/ecpay_gateway.go
package payment

import (
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"ecpay-checkout-bot/internal/domain/model"
	"ecpay-checkout-bot/internal/domain/ports/adapter"
)

var _ adapter.CheckoutGateway = (*ECPayGateway)(nil)

// Config is the merchant-side gateway configuration. It is read-only for
// the lifetime of a gateway instance.
type Config struct {
	MerchantID        string
	HashKey           string
	HashIV            string
	PaymentType       string // fixed "aio"
	EncryptType       int    // fixed 1 (SHA-256)
	ExpireDays        int    // default days until a CVS/BARCODE request lapses
	ReturnURL         string
	ClientRedirectURL string
	Sandbox           bool
}

// ECPayGateway implements adapter.CheckoutGateway for the ECPay AIO
// checkout. It composes and signs outbound requests and re-verifies inbound
// signatures; it never performs network I/O itself.
type ECPayGateway struct {
	cfg Config
	now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewECPayGateway validates the merchant configuration and applies the
// gateway protocol defaults.
func NewECPayGateway(cfg Config) (*ECPayGateway, error) {
	if cfg.MerchantID == "" {
		return nil, errors.New("merchant id empty")
	}
	if cfg.HashKey == "" || cfg.HashIV == "" {
		return nil, errors.New("hash key/iv empty")
	}
	if cfg.ReturnURL != "" {
		if _, err := url.Parse(cfg.ReturnURL); err != nil {
			return nil, fmt.Errorf("invalid return url: %w", err)
		}
	}
	if cfg.PaymentType == "" {
		cfg.PaymentType = "aio"
	}
	if cfg.EncryptType == 0 {
		cfg.EncryptType = 1
	}
	if cfg.ExpireDays <= 0 {
		cfg.ExpireDays = 7
	}
	return &ECPayGateway{
		cfg: cfg,
		now: time.Now,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (g *ECPayGateway) Name() string { return "ecpay" }

// SetClock overrides the time source. Intended for tests.
func (g *ECPayGateway) SetClock(now func() time.Time) { g.now = now }

// SetRand overrides the artifact randomness source. Intended for tests.
func (g *ECPayGateway) SetRand(rng *rand.Rand) {
	g.mu.Lock()
	g.rng = rng
	g.mu.Unlock()
}

// endpoint returns the hosted checkout URL for the configured environment.
func (g *ECPayGateway) endpoint() string {
	if g.cfg.Sandbox {
		return "https://payment-stage.ecpay.com.tw/Cashier/AioCheckOut/V5"
	}
	return "https://payment.ecpay.com.tw/Cashier/AioCheckOut/V5"
}

// Checkout composes the parameter set for the order, signs it, and renders
// the auto-submitting checkout document. Each call is independent: nothing
// is shared across requests except the read-only config.
func (g *ECPayGateway) Checkout(req model.OrderRequest) (*model.CheckoutResult, error) {
	req.TradeDesc = strings.TrimSpace(req.TradeDesc)
	req.ItemName = strings.TrimSpace(req.ItemName)

	spec, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	now := g.now()
	fields := composeFields(g.cfg, spec, req, now)
	fields[CheckMacValueField] = CheckMacValue(fields, g.cfg.HashKey, g.cfg.HashIV)

	form, err := buildCheckoutForm(g.endpoint(), fields)
	if err != nil {
		return nil, fmt.Errorf("render checkout form: %w", err)
	}

	info := model.OrderInfo{
		TradeNo:           req.TradeNo,
		MerchantID:        g.cfg.MerchantID,
		Amount:            req.Amount,
		TradeDesc:         req.TradeDesc,
		ItemName:          req.ItemName,
		Method:            req.Method,
		MethodSpec:        spec,
		CreatedAt:         now,
		InstallmentPeriod: req.InstallmentPeriod,
	}
	if due, ok := fields["ExpireDate"]; ok {
		info.ExpireDate = due
		info.ExpiresAt = now.AddDate(0, 0, expireDays(spec, g.cfg.ExpireDays))
	}

	g.mu.Lock()
	fillArtifacts(g.rng, &info, req)
	g.mu.Unlock()

	return &model.CheckoutResult{Fields: fields, FormHTML: form, Info: info}, nil
}

// VerifyCallback checks an inbound field map's claimed CheckMacValue
// against a recomputed one. It fails closed on any malformed input.
func (g *ECPayGateway) VerifyCallback(fields map[string]string) bool {
	if len(fields) == 0 {
		return false
	}
	return VerifyCheckMacValue(fields, g.cfg.HashKey, g.cfg.HashIV)
}
