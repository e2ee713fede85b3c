package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"ecpay-checkout-bot/internal/domain/model"
	"ecpay-checkout-bot/internal/usecase"
)

// parsePayArgs turns the /pay argument list into an IssueRequest.
//
//	/pay <amount> <desc> [item] [store|method] [installment]
//
// Tokens after the description are recognized by value: a store-type token
// selects the convenience store, a method token selects the payment channel,
// a bare number selects the installment period, anything else is taken as
// the item name. Defaults: CVS across all stores.
func parsePayArgs(args []string) (usecase.IssueRequest, error) {
	req := usecase.IssueRequest{
		Method:    model.MethodCVS,
		StoreType: model.StoreAll,
	}
	if len(args) < 2 {
		return req, fmt.Errorf("用法: /pay <金額> <說明> [商品名稱] [超商|付款方式] [期數]")
	}

	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return req, fmt.Errorf("金額必須是整數: %q", args[0])
	}
	req.Amount = amount
	req.TradeDesc = args[1]

	for _, tok := range args[2:] {
		upper := model.StoreType(strings.ToUpper(tok))
		switch {
		case upper.Valid():
			req.StoreType = upper
		case model.PaymentMethod(strings.ToUpper(tok)).Valid():
			req.Method = model.PaymentMethod(strings.ToUpper(tok))
		default:
			if n, err := strconv.Atoi(tok); err == nil {
				req.InstallmentPeriod = n
				continue
			}
			if req.ItemName == "" {
				req.ItemName = tok
			}
		}
	}

	// An installment period implies the installment channel.
	if req.InstallmentPeriod > 0 && req.Method == model.MethodCredit {
		req.Method = model.MethodCreditInstallment
	}
	return req, nil
}
