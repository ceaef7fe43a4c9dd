// Package metrics holds the Prometheus collectors of the game engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gridgames"

// Turn processing results.
const (
	TurnCreated = "created"
	TurnNoop    = "noop"
	TurnError   = "error"
)

// Bot request results.
const (
	BotOK             = "ok"
	BotTransportError = "transport_error"
	BotBadResponse    = "bad_response"
	BotRejected       = "rejected"
)

// Expiration task results.
const (
	ExpirationHandled = "handled"
	ExpirationInvalid = "invalid"
	ExpirationFailed  = "failed"
)

var (
	TurnsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "turns_processed_total",
		Help:      "Turn processing attempts by result.",
	}, []string{"result"})

	BotRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bot_requests_total",
		Help:      "Bot move requests by result.",
	}, []string{"result"})

	BotRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "bot_request_duration_seconds",
		Help:      "Round trip time of bot move requests.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	Expirations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expirations_total",
		Help:      "Turn expiration tasks by result.",
	}, []string{"result"})
)
