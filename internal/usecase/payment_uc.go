// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ecpay-checkout-bot/internal/domain"
	"ecpay-checkout-bot/internal/domain/model"
	"ecpay-checkout-bot/internal/domain/ports/adapter"
	"ecpay-checkout-bot/internal/infra/logging"
	"ecpay-checkout-bot/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// IssueRequest carries the caller-facing order parameters; the trade number
// is generated here.
type IssueRequest struct {
	Amount            int64
	TradeDesc         string
	ItemName          string
	Method            model.PaymentMethod
	StoreType         model.StoreType
	InstallmentPeriod int
}

type PaymentUseCase interface {
	// Issue composes, signs and renders a checkout request for the order.
	Issue(ctx context.Context, req IssueRequest) (*model.CheckoutResult, error)
	// VerifyCallback re-verifies the integrity signature of an inbound
	// field map. It never fails open.
	VerifyCallback(ctx context.Context, fields map[string]string) bool
}

type paymentUC struct {
	gateway adapter.CheckoutGateway
	log     *zerolog.Logger
}

func NewPaymentUseCase(gateway adapter.CheckoutGateway, logger *zerolog.Logger) PaymentUseCase {
	return &paymentUC{gateway: gateway, log: logger}
}

// newTradeNo builds a caller-unique trade number: a fixed prefix, the
// creation timestamp and a random fragment.
func newTradeNo(now time.Time) string {
	return "DC" + now.Format("20060102150405") + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (u *paymentUC) Issue(ctx context.Context, req IssueRequest) (*model.CheckoutResult, error) {
	order := model.OrderRequest{
		TradeNo:           newTradeNo(time.Now()),
		Amount:            req.Amount,
		TradeDesc:         req.TradeDesc,
		ItemName:          req.ItemName,
		Method:            req.Method,
		StoreType:         req.StoreType,
		InstallmentPeriod: req.InstallmentPeriod,
	}
	if order.ItemName == "" {
		order.ItemName = "商品"
	}
	log := logging.With(logging.WithTradeNo(ctx, order.TradeNo), u.log)

	res, err := u.gateway.Checkout(order)
	if err != nil {
		metrics.IncOrderRejected(string(req.Method), rejectReason(err))
		log.Warn().Err(err).
			Str("method", string(req.Method)).
			Int64("amount", req.Amount).
			Msg("checkout request rejected")
		return nil, fmt.Errorf("issue checkout: %w", err)
	}

	metrics.IncOrderIssued(string(req.Method), req.Amount)
	log.Info().
		Str("method", string(req.Method)).
		Int64("amount", req.Amount).
		Msg("checkout request issued")
	return res, nil
}

func (u *paymentUC) VerifyCallback(ctx context.Context, fields map[string]string) bool {
	ok := u.gateway.VerifyCallback(fields)
	metrics.IncSignatureVerify(ok)
	if !ok {
		u.log.Warn().Str("trade_no", fields["MerchantTradeNo"]).Msg("callback signature mismatch")
	}
	return ok
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrMissingRequiredOption):
		return "missing_option"
	case errors.Is(err, domain.ErrUnsupportedMethod):
		return "unsupported_method"
	default:
		return "internal"
	}
}
