package adapter

import "ecpay-checkout-bot/internal/domain/model"

// CheckoutGateway is the hex port for the payment provider. Implementations
// are pure apart from reading the clock and a random source, and are safe
// for concurrent use.
type CheckoutGateway interface {
	Name() string

	// Checkout composes the gateway parameter set for the request, signs it
	// and renders the checkout document. No network I/O happens here.
	Checkout(req model.OrderRequest) (*model.CheckoutResult, error)

	// VerifyCallback recomputes the integrity signature over an inbound
	// field map and compares it with the claimed one. It fails closed:
	// malformed input yields false, never an error.
	VerifyCallback(fields map[string]string) bool
}
