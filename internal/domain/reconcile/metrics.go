package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics метрики синхронизации
type Metrics struct {
	Passes          *prometheus.CounterVec // crownsync_reconcile_passes_total{state}
	Items           *prometheus.CounterVec // crownsync_reconcile_items_total{outcome}
	PassDuration    prometheus.Histogram
	ObjectsDeleted  *prometheus.CounterVec // crownsync_remote_objects_deleted_total{result}
	SidecarsMissing prometheus.Counter
}

// NewMetrics регистрирует метрики в registry. Если registry nil, используется регистр по умолчанию.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		Passes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crownsync_reconcile_passes_total",
			Help: "Reconciliation passes by final state",
		}, []string{"state"}),

		Items: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crownsync_reconcile_items_total",
			Help: "Video clips processed by outcome",
		}, []string{"outcome"}),

		PassDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "crownsync_reconcile_pass_duration_seconds",
			Help:    "Duration of reconciliation passes",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),

		ObjectsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crownsync_remote_objects_deleted_total",
			Help: "Remote object deletions by result",
		}, []string{"result"}),

		SidecarsMissing: factory.NewCounter(prometheus.CounterOpts{
			Name: "crownsync_reconcile_sidecars_missing_total",
			Help: "Video views built without a usable metadata sidecar",
		}),
	}
}

func (m *Metrics) observe(r *Report) {
	if m == nil {
		return
	}
	m.Passes.WithLabelValues(string(r.State)).Inc()
	m.Items.WithLabelValues("imported").Add(float64(r.Imported))
	m.Items.WithLabelValues("updated").Add(float64(r.Updated))
	m.Items.WithLabelValues("orphaned").Add(float64(r.Orphaned))
	m.Items.WithLabelValues("failed").Add(float64(r.Failed))
	m.PassDuration.Observe(r.Duration.Seconds())
}

func (m *Metrics) observeDeletion(r *DeletionReport) {
	if m == nil {
		return
	}
	m.ObjectsDeleted.WithLabelValues("ok").Add(float64(r.Deleted))
	m.ObjectsDeleted.WithLabelValues("failed").Add(float64(r.Failed))
}

func (m *Metrics) sidecarMissing() {
	if m == nil {
		return
	}
	m.SidecarsMissing.Inc()
}
