package pricing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

const (
	sourceRemote    = "remote"
	sourceSimulated = "simulated"
	sourceCache     = "cache"
)

var (
	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_lookups_total",
			Help: "Price lookups by operation, source and outcome",
		},
		[]string{"op", "source", "outcome"},
	)

	breakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricing_breaker_state",
			Help: "State of the price API circuit breaker (0=closed, 1=half-open, 2=open)",
		},
	)
)

func observeLookup(op, source string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	lookupsTotal.WithLabelValues(op, source, outcome).Inc()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
