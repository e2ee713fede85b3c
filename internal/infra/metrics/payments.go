package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		ordersIssuedTotal,
		ordersRejectedTotal,
		ordersAmountTotal,
		signatureVerifyTotal,
	)
}

var (
	ordersIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_orders_issued_total",
			Help: "Checkout requests issued, labeled by payment method.",
		},
		[]string{"method"},
	)

	ordersRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_orders_rejected_total",
			Help: "Checkout requests rejected before signing, labeled by method and reason.",
		},
		[]string{"method", "reason"},
	)

	ordersAmountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_orders_amount_total",
			Help: "Total NTD amount of issued checkout requests per method.",
		},
		[]string{"method"},
	)

	signatureVerifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_signature_verify_total",
			Help: "Inbound signature verifications by outcome (ok/mismatch).",
		},
		[]string{"outcome"},
	)
)

func IncOrderIssued(method string, amount int64) {
	ordersIssuedTotal.WithLabelValues(norm(method)).Inc()
	ordersAmountTotal.WithLabelValues(norm(method)).Add(float64(amount))
}

func IncOrderRejected(method, reason string) {
	ordersRejectedTotal.WithLabelValues(norm(method), norm(reason)).Inc()
}

func IncSignatureVerify(ok bool) {
	outcome := "mismatch"
	if ok {
		outcome = "ok"
	}
	signatureVerifyTotal.WithLabelValues(outcome).Inc()
}
