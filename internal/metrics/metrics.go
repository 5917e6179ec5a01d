// Package metrics collects and exposes Prometheus metrics for the HTTP
// surface and the token economy.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the slice of the collector domain services use.
type Recorder interface {
	RecordTaskCompleted(category string)
	RecordTaskUndone()
	RecordTokensAwarded(n int)
	RecordTokensSpent(n int)
	RecordAchievementUnlocked(achievementType string)
	RecordRewardRedeemed()
}

// Collector owns the Prometheus metrics and implements Recorder.
type Collector struct {
	httpRequests         *prometheus.CounterVec
	httpLatency          prometheus.Histogram
	tasksCompleted       *prometheus.CounterVec
	tasksUndone          prometheus.Counter
	tokensAwarded        prometheus.Counter
	tokensSpent          prometheus.Counter
	achievementsUnlocked *prometheus.CounterVec
	rewardsRedeemed      prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lemonqwest_http_requests_total",
			Help: "HTTP requests by method, path pattern, and status code.",
		}, []string{"method", "path", "status"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lemonqwest_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}),
		tasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lemonqwest_tasks_completed_total",
			Help: "Tasks completed, by category.",
		}, []string{"category"}),
		tasksUndone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lemonqwest_tasks_undone_total",
			Help: "Task completions undone.",
		}),
		tokensAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lemonqwest_tokens_awarded_total",
			Help: "Tokens awarded for completed tasks.",
		}),
		tokensSpent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lemonqwest_tokens_spent_total",
			Help: "Tokens spent on reward redemptions.",
		}),
		achievementsUnlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lemonqwest_achievements_unlocked_total",
			Help: "Achievements unlocked, by type.",
		}, []string{"type"}),
		rewardsRedeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lemonqwest_rewards_redeemed_total",
			Help: "Reward redemptions.",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.tasksCompleted,
		c.tasksUndone,
		c.tokensAwarded,
		c.tokensSpent,
		c.achievementsUnlocked,
		c.rewardsRedeemed,
	)
	return c
}

func (c *Collector) RecordTaskCompleted(category string) {
	c.tasksCompleted.WithLabelValues(category).Inc()
}

func (c *Collector) RecordTaskUndone() {
	c.tasksUndone.Inc()
}

func (c *Collector) RecordTokensAwarded(n int) {
	if n > 0 {
		c.tokensAwarded.Add(float64(n))
	}
}

func (c *Collector) RecordTokensSpent(n int) {
	if n > 0 {
		c.tokensSpent.Add(float64(n))
	}
}

func (c *Collector) RecordAchievementUnlocked(achievementType string) {
	c.achievementsUnlocked.WithLabelValues(achievementType).Inc()
}

func (c *Collector) RecordRewardRedeemed() {
	c.rewardsRedeemed.Inc()
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// Handler returns the /metrics endpoint for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
