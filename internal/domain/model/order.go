// File: internal/domain/model/order.go
package model

import "time"

// PaymentMethod is the closed set of checkout channels the gateway accepts.
type PaymentMethod string

const (
	MethodCredit            PaymentMethod = "CREDIT"
	MethodCreditInstallment PaymentMethod = "CREDIT_INSTALLMENT"
	MethodWebATM            PaymentMethod = "WEBATM"
	MethodATM               PaymentMethod = "ATM"
	MethodCVS               PaymentMethod = "CVS"
	MethodBarcode           PaymentMethod = "BARCODE"
	MethodGooglePay         PaymentMethod = "GOOGLEPAY"
	MethodApplePay          PaymentMethod = "APPLEPAY"
)

// StoreType selects the convenience-store chain for CVS payment codes.
type StoreType string

const (
	StoreAll    StoreType = "ALL"
	StoreSeven  StoreType = "SEVEN"
	StoreFamily StoreType = "FAMILY"
	StoreHiLife StoreType = "HILIFE"
	StoreOK     StoreType = "OK"
)

func (s StoreType) Valid() bool {
	switch s {
	case StoreAll, StoreSeven, StoreFamily, StoreHiLife, StoreOK:
		return true
	}
	return false
}

// InstallmentPeriods are the installment counts the gateway supports.
var InstallmentPeriods = []int{3, 6, 12, 18, 24}

func ValidInstallmentPeriod(n int) bool {
	for _, p := range InstallmentPeriods {
		if n == p {
			return true
		}
	}
	return false
}

// MethodSpec describes how a payment method maps onto the gateway protocol:
// its ChoosePayment channel value, the amount ceiling, and whether/when the
// request carries an expiration date.
type MethodSpec struct {
	Channel       string // value for the ChoosePayment field
	Display       string
	MaxAmount     int64
	HasExpireDate bool
	ExpireDays    int // 0 means "use the configured default"
	Installment   bool
}

var methodSpecs = map[PaymentMethod]MethodSpec{
	MethodCredit:            {Channel: "Credit", Display: "信用卡", MaxAmount: 1_000_000},
	MethodCreditInstallment: {Channel: "Credit", Display: "信用卡分期", MaxAmount: 1_000_000, Installment: true},
	MethodWebATM:            {Channel: "WebATM", Display: "網路ATM", MaxAmount: 50_000},
	MethodATM:               {Channel: "ATM", Display: "ATM櫃員機", MaxAmount: 50_000, HasExpireDate: true, ExpireDays: 3},
	MethodCVS:               {Channel: "CVS", Display: "超商代碼", MaxAmount: 20_000, HasExpireDate: true},
	MethodBarcode:           {Channel: "BARCODE", Display: "超商條碼", MaxAmount: 20_000, HasExpireDate: true},
	MethodGooglePay:         {Channel: "GooglePay", Display: "Google Pay", MaxAmount: 1_000_000},
	MethodApplePay:          {Channel: "ApplePay", Display: "Apple Pay", MaxAmount: 1_000_000},
}

// Spec returns the gateway descriptor for the method; ok is false for
// anything outside the closed enumeration.
func (m PaymentMethod) Spec() (MethodSpec, bool) {
	s, ok := methodSpecs[m]
	return s, ok
}

func (m PaymentMethod) Valid() bool {
	_, ok := methodSpecs[m]
	return ok
}

// Methods lists the supported payment methods in a stable order.
func Methods() []PaymentMethod {
	return []PaymentMethod{
		MethodCredit, MethodCreditInstallment, MethodWebATM, MethodATM,
		MethodCVS, MethodBarcode, MethodGooglePay, MethodApplePay,
	}
}

// OrderRequest is the immutable input to the request composer.
type OrderRequest struct {
	TradeNo           string
	Amount            int64 // NTD, no minor units
	TradeDesc         string
	ItemName          string
	Method            PaymentMethod
	StoreType         StoreType // CVS only; empty means ALL
	InstallmentPeriod int       // CREDIT_INSTALLMENT only
}

// OrderInfo is the derived presentation record for a composed order. It is
// created once per request and never mutated; nothing persists it.
type OrderInfo struct {
	TradeNo    string
	MerchantID string
	Amount     int64
	TradeDesc  string
	ItemName   string
	Method     PaymentMethod
	MethodSpec MethodSpec
	StoreType  StoreType

	CreatedAt  time.Time
	ExpiresAt  time.Time
	ExpireDate string // gateway date format 2006/01/02

	// Locally synthesized settlement artifacts; empty for methods that
	// redirect straight to the hosted checkout page.
	PaymentCode       string // store-specific payment code (CVS)
	MachineCode       string // 14-digit kiosk code, always computed for CVS
	Barcodes          [3]string
	BankCode          string
	VirtualAccount    string
	InstallmentPeriod int
}

// CheckoutResult bundles everything the caller needs to present a payment:
// the signed gateway parameters, the auto-submitting checkout document and
// the derived order info.
type CheckoutResult struct {
	Fields   map[string]string
	FormHTML []byte
	Info     OrderInfo
}
