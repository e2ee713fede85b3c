package payment

import (
	"fmt"
	"strconv"
	"time"

	"ecpay-checkout-bot/internal/domain"
	"ecpay-checkout-bot/internal/domain/model"
)

const (
	tradeDateLayout  = "2006/01/02 15:04:05"
	expireDateLayout = "2006/01/02"
)

// validateRequest enforces the per-method parameter policy before anything
// is composed; on failure no partial output exists.
func validateRequest(req model.OrderRequest) (model.MethodSpec, error) {
	spec, ok := req.Method.Spec()
	if !ok {
		return model.MethodSpec{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedMethod, string(req.Method))
	}
	if req.Amount <= 0 || req.Amount > spec.MaxAmount {
		return model.MethodSpec{}, &domain.InvalidAmountError{
			Method: string(req.Method),
			Amount: req.Amount,
			Limit:  spec.MaxAmount,
		}
	}
	if spec.Installment {
		if req.InstallmentPeriod == 0 {
			return model.MethodSpec{}, fmt.Errorf("%w: installment period is required for %s",
				domain.ErrMissingRequiredOption, req.Method)
		}
		if !model.ValidInstallmentPeriod(req.InstallmentPeriod) {
			return model.MethodSpec{}, fmt.Errorf("%w: installment period %d is not offered (3/6/12/18/24)",
				domain.ErrMissingRequiredOption, req.InstallmentPeriod)
		}
	}
	if req.Method == model.MethodCVS && req.StoreType != "" && !req.StoreType.Valid() {
		return model.MethodSpec{}, fmt.Errorf("%w: unknown store type %q",
			domain.ErrMissingRequiredOption, string(req.StoreType))
	}
	return spec, nil
}

// expireDays resolves the method's expiration policy against the configured
// default.
func expireDays(spec model.MethodSpec, defaultDays int) int {
	if spec.ExpireDays > 0 {
		return spec.ExpireDays
	}
	if defaultDays > 0 {
		return defaultDays
	}
	return 7
}

// composeFields builds the unsigned gateway parameter map: the base fields
// every request carries plus the method's conditional ones. Field names are
// the gateway's documented parameter names and must stay verbatim.
func composeFields(cfg Config, spec model.MethodSpec, req model.OrderRequest, now time.Time) map[string]string {
	fields := map[string]string{
		"MerchantID":        cfg.MerchantID,
		"MerchantTradeNo":   req.TradeNo,
		"MerchantTradeDate": now.Format(tradeDateLayout),
		"PaymentType":       cfg.PaymentType,
		"TotalAmount":       strconv.FormatInt(req.Amount, 10),
		"TradeDesc":         req.TradeDesc,
		"ItemName":          req.ItemName,
		"ReturnURL":         cfg.ReturnURL,
		"ChoosePayment":     spec.Channel,
		"EncryptType":       strconv.Itoa(cfg.EncryptType),
		"ClientRedirectURL": cfg.ClientRedirectURL,
	}
	if spec.HasExpireDate {
		due := now.AddDate(0, 0, expireDays(spec, cfg.ExpireDays))
		fields["ExpireDate"] = due.Format(expireDateLayout)
	}
	if spec.Installment {
		fields["CreditInstallment"] = strconv.Itoa(req.InstallmentPeriod)
		fields["InstallmentAmount"] = strconv.FormatInt(req.Amount, 10)
	}
	return fields
}
