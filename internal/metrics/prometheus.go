package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MutationsTotal counts store mutations by collection and operation.
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_mutations_total",
			Help: "Total number of applied fleet store mutations",
		},
		[]string{"collection", "op"},
	)

	// NotificationsEmitted counts notifications appended, by type.
	NotificationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_notifications_emitted_total",
			Help: "Total number of notifications appended to the store",
		},
		[]string{"type"},
	)

	// UnreadNotifications tracks the current unread notification count.
	UnreadNotifications = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleet_notifications_unread",
			Help: "Number of unread notifications",
		},
	)

	// LoginAttempts counts login attempts by result (success, failure).
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// AccessDenied counts guard denials by route and reason.
	AccessDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_access_denied_total",
			Help: "Total number of route accesses refused by the guard",
		},
		[]string{"route", "reason"},
	)
)

// LoginResult maps a login outcome to its label value.
func LoginResult(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
