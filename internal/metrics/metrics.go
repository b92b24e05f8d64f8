// Package metrics - prometheus-метрики решателя отклонений.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "devsync"

// Metrics - счётчики и gauge одного демона в собственном реестре.
type Metrics struct {
	registry *prometheus.Registry

	samples       prometheus.Counter
	corrections   *prometheus.CounterVec // label mode: none/slew/step
	probeErrors   prometheus.Counter
	journalErrors prometheus.Counter
	misses        prometheus.Gauge
	outOfSyncSum  prometheus.Gauge
	totalSum      prometheus.Gauge
	lastDeviation prometheus.Gauge
	lastCorrect   prometheus.Gauge
	deviationAbs  prometheus.Histogram
}

// New создаёт и регистрирует метрики (плюс go/process collectors)
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "samples_total",
			Help: "Deviation samples processed",
		}),
		corrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "corrections_total",
			Help: "Non-zero corrections by how they were applied",
		}, []string{"mode"}),
		probeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "probe_errors_total",
			Help: "Failed reference event reads",
		}),
		journalErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "journal_errors_total",
			Help: "Failed decision journal writes",
		}),
		misses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "window_misses",
			Help: "Out-of-range samples in the current window",
		}),
		outOfSyncSum: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "window_out_of_sync_sum_ns",
			Help: "Signed sum of out-of-range samples in the window",
		}),
		totalSum: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "window_total_sum_ns",
			Help: "Signed sum of all samples in the window",
		}),
		lastDeviation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_deviation_ns",
			Help: "Most recent deviation sample",
		}),
		lastCorrect: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_correction_ns",
			Help: "Most recent non-zero correction",
		}),
		deviationAbs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "deviation_abs_ns",
			Help:    "Absolute deviation distribution",
			Buckets: prometheus.ExponentialBuckets(10, 4, 12), // 10ns .. ~40ms
		}),
	}
	m.registry.MustRegister(
		m.samples, m.corrections, m.probeErrors, m.journalErrors,
		m.misses, m.outOfSyncSum, m.totalSum, m.lastDeviation, m.lastCorrect, m.deviationAbs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSample - один обработанный сэмпл и агрегаты окна после него
func (m *Metrics) ObserveSample(deviation int64, misses int, outOfSyncSum, totalSum int64) {
	m.samples.Inc()
	m.lastDeviation.Set(float64(deviation))
	if deviation < 0 {
		m.deviationAbs.Observe(-float64(deviation))
	} else {
		m.deviationAbs.Observe(float64(deviation))
	}
	m.misses.Set(float64(misses))
	m.outOfSyncSum.Set(float64(outOfSyncSum))
	m.totalSum.Set(float64(totalSum))
}

// ObserveCorrection - ненулевая коррекция и способ применения
func (m *Metrics) ObserveCorrection(correction int64, mode string) {
	m.lastCorrect.Set(float64(correction))
	m.corrections.WithLabelValues(mode).Inc()
}

// ProbeError увеличивает счётчик ошибок probe
func (m *Metrics) ProbeError() { m.probeErrors.Inc() }

// JournalError увеличивает счётчик ошибок журнала
func (m *Metrics) JournalError() { m.journalErrors.Inc() }

// Handler отдаёт /metrics по собственному реестру
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry - для тестов и встраивания
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
