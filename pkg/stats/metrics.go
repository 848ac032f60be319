package stats

import (
	"time"

	"github.com/licencecheck/licencecheck/pkg/comparator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	namespace = "licencecheck"
	jobName   = "licencecheck_daily"
)

// RunMetrics holds the gauges describing one daily run
type RunMetrics struct {
	Registry *prometheus.Registry

	DriversTotal    prometheus.Gauge
	UnlicensedTotal prometheus.Gauge
	Changes         *prometheus.GaugeVec
	UploadSuccess   prometheus.Gauge
	RunDuration     prometheus.Gauge
}

func NewRunMetrics() *RunMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &RunMetrics{
		Registry: registry,
		DriversTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "drivers_total",
			Help:      "Distinct drivers in today's feed",
		}),
		UnlicensedTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unlicensed_total",
			Help:      "Drivers whose licence status is not LICENCED",
		}),
		Changes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "changes",
			Help:      "Drivers flagged per change category",
		}, []string{"category"}),
		UploadSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upload_success",
			Help:      "1 when the loader upload was confirmed",
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the daily run",
		}),
	}
}

func (m *RunMetrics) Observe(report *comparator.ChangeReport, uploadSuccess bool, duration time.Duration) {
	m.DriversTotal.Set(float64(report.Total))
	m.UnlicensedTotal.Set(float64(report.UnlicensedCount))

	for _, kind := range comparator.ChangeKinds {
		m.Changes.WithLabelValues(kind.String()).Set(float64(len(report.Keys(kind))))
	}
	m.Changes.WithLabelValues(comparator.ErrorsCategory).Set(float64(len(report.Errors)))

	if uploadSuccess {
		m.UploadSuccess.Set(1)
	} else {
		m.UploadSuccess.Set(0)
	}

	m.RunDuration.Set(duration.Seconds())
}

// Push sends the gauges to a Pushgateway, replacing the job's last push
func (m *RunMetrics) Push(url string) error {
	return push.New(url, jobName).Gatherer(m.Registry).Push()
}
