package etl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa las métricas de las corridas ETL.
type Metrics struct {
	Records  prometheus.Counter
	Rejected *prometheus.CounterVec
	Facts    prometheus.Counter
	Runs     *prometheus.CounterVec
	Duration prometheus.Histogram
}

// NewMetrics registra las métricas en reg; con nil usa el registro por defecto.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		Records: f.NewCounter(prometheus.CounterOpts{
			Namespace: "horarios",
			Subsystem: "etl",
			Name:      "records_total",
			Help:      "Registros crudos leídos por el normalizador",
		}),
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "horarios",
			Subsystem: "etl",
			Name:      "rejected_records_total",
			Help:      "Registros descartados por motivo",
		}, []string{"reason"}),
		Facts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "horarios",
			Subsystem: "etl",
			Name:      "facts_loaded_total",
			Help:      "Hechos escritos en fact_clase",
		}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "horarios",
			Subsystem: "etl",
			Name:      "runs_total",
			Help:      "Corridas ETL por resultado",
		}, []string{"status"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "horarios",
			Subsystem: "etl",
			Name:      "run_duration_seconds",
			Help:      "Duración de las corridas ETL",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
}
