package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(audioJobsProcessedTotal, audioJobsInFlight, staleJobsReapedTotal) }

var (
	audioJobsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_jobs_processed_total",
			Help: "Audio jobs that reached a terminal state, labeled by status.",
		},
		[]string{"status"}, // 'completed', 'failed'
	)

	audioJobsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "audio_jobs_in_flight",
			Help: "Audio jobs currently running in the worker pool.",
		},
	)

	staleJobsReapedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stale_jobs_reaped_total",
			Help: "Jobs failed by the reaper after exceeding the processing deadline.",
		},
	)
)

func IncAudioJob(status string) {
	audioJobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func JobStarted()  { audioJobsInFlight.Inc() }
func JobFinished() { audioJobsInFlight.Dec() }

func AddStaleJobsReaped(n int) {
	staleJobsReapedTotal.Add(float64(n))
}
