package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(uploadRejectionsTotal, rateLimitTriggeredTotal, entityConfigUpdatesTotal)
}

var (
	uploadRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upload_rejections_total",
			Help: "Uploads rejected before a job was created or during validation.",
		},
		[]string{"reason"}, // too_large, empty, unsupported_media, queue_full
	)

	rateLimitTriggeredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_triggered_total",
			Help: "Requests refused by the per-client rate limiter.",
		},
		[]string{"route"},
	)

	entityConfigUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_config_updates_total",
			Help: "Entity configuration changes by outcome.",
		},
		[]string{"status"},
	)
)

func IncUploadRejection(reason string) {
	uploadRejectionsTotal.WithLabelValues(norm(reason)).Inc()
}

func IncRateLimitTriggered(route string) {
	rateLimitTriggeredTotal.WithLabelValues(norm(route)).Inc()
}

func IncEntityConfigUpdate(status string) {
	entityConfigUpdatesTotal.WithLabelValues(norm(status)).Inc()
}
