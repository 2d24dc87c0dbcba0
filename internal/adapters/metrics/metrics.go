package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	loginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_login_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	restoreTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_session_restore_total",
		Help: "Session restorations by outcome.",
	}, []string{"outcome"})

	guardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_guard_decisions_total",
		Help: "Route guard decisions by variant and decision.",
	}, []string{"variant", "decision"})

	notificationFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_notification_fetch_failures_total",
		Help: "Failed notification backend calls by operation.",
	}, []string{"operation"})

	liveSessions = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gateway_live_sessions",
		Help: "In-memory session managers currently held by the registry.",
	}, func() float64 {
		if sessionCounter == nil {
			return 0
		}
		return float64(sessionCounter())
	})

	sessionCounter func() int
)

func Login(outcome string) { loginTotal.WithLabelValues(outcome).Inc() }

func Restore(outcome string) { restoreTotal.WithLabelValues(outcome).Inc() }

func GuardDecision(variant, kind string) { guardDecisions.WithLabelValues(variant, kind).Inc() }

func NotificationFetchFailure(op string) { notificationFetchFailures.WithLabelValues(op).Inc() }

// TrackLiveSessions wires the live-session gauge to the registry.
func TrackLiveSessions(count func() int) { sessionCounter = count }

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
