package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "listing_notifications_sent_total", Help: "Notifications delivered"},
		[]string{"template"},
	)
	NotificationsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "listing_notifications_failed_total", Help: "Notification deliveries that failed"},
		[]string{"template"},
	)
	NotificationsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "listing_notifications_skipped_total", Help: "Recipients skipped because they unsubscribed"},
		[]string{"template"},
	)
	SlugCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "listing_slug_collisions_total", Help: "Slug probes that hit an active listing"},
	)
	SlugInsertConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "listing_slug_insert_conflicts_total", Help: "Listing inserts rejected by the slug unique index"},
	)
	WebhookForwarded = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "listing_webhook_forwarded_total", Help: "Outbox events delivered to the automation webhook"},
	)
	WebhookFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "listing_webhook_failed_total", Help: "Failed automation webhook attempts"},
	)
	PaymentsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "listing_payments_recorded_total", Help: "Submissions marked as paid"},
	)
)

func Register() {
	prometheus.MustRegister(
		NotificationsSent,
		NotificationsFailed,
		NotificationsSkipped,
		SlugCollisions,
		SlugInsertConflicts,
		WebhookForwarded,
		WebhookFailed,
		PaymentsRecorded,
	)
}
