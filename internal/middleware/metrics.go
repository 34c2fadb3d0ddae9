package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "candor_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// VoteTransitions counts vote state transitions by target kind and outcome.
	VoteTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "candor_vote_transitions_total",
		Help: "Total number of vote state transitions by target and outcome",
	}, []string{"target", "outcome"})

	// FeedbackRejected counts feedback submissions rejected by the duplicate gate.
	FeedbackRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "candor_feedback_duplicate_rejections_total",
		Help: "Total number of feedback submissions rejected as duplicates",
	})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware adapts the Prometheus collector into a Fiber handler.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
