package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		botCommandsReceivedTotal,
		botRateLimitTriggeredTotal,
		botUnauthorizedTotal,
	)
}

var (
	botCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_received_total",
			Help: "Counts incoming commands from chat users.",
		},
		[]string{"command"},
	)

	botRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	botUnauthorizedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_unauthorized_total",
			Help: "Commands refused by the permission check.",
		},
		[]string{"command"},
	)
)

func IncBotCommand(command string) {
	botCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() {
	botRateLimitTriggeredTotal.Inc()
}

func IncUnauthorized(command string) {
	botUnauthorizedTotal.WithLabelValues(norm(command)).Inc()
}
