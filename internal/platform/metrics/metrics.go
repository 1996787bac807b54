// Package metrics exposes Prometheus counters for schedule updates,
// conflict resolution and patient notifications.
package metrics

import (
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scheduleUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shifa_schedule_updates_total",
			Help: "Completed working-hours updates by entity type.",
		},
		[]string{"entity_type"},
	)

	conflictsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shifa_appointment_conflicts_resolved_total",
			Help: "Appointments affected by schedule changes, by resolution strategy.",
		},
		[]string{"strategy"},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shifa_notifications_total",
			Help: "Patient notifications by delivery status.",
		},
		[]string{"status"},
	)

	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shifa_schedule_cache_requests_total",
			Help: "Schedule cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	registerOnce sync.Once
)

// Register installs the collectors in the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			scheduleUpdates,
			conflictsResolved,
			notificationsSent,
			cacheRequests,
		)
	})
}

func IncScheduleUpdate(entityType string) {
	scheduleUpdates.WithLabelValues(entityType).Inc()
}

func AddConflictsResolved(strategy string, n int) {
	if n > 0 {
		conflictsResolved.WithLabelValues(strategy).Add(float64(n))
	}
}

func IncNotification(status string) {
	notificationsSent.WithLabelValues(status).Inc()
}

func IncCacheHit()  { cacheRequests.WithLabelValues("hit").Inc() }
func IncCacheMiss() { cacheRequests.WithLabelValues("miss").Inc() }

// Handler serves the Prometheus scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
