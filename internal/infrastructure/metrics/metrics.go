package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fridge_inventory"

// Metrics 對帳與偵測相關指標
type Metrics struct {
	registry *prometheus.Registry

	passes          *prometheus.CounterVec
	passDuration    *prometheus.HistogramVec
	records         *prometheus.CounterVec
	detectorCalls   *prometheus.CounterVec
	detectorLatency *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
}

// New 建立獨立 registry 的指標集合
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_passes_total",
			Help:      "Reconciliation passes by channel and result.",
		}, []string{"channel", "result"}),
		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_pass_duration_seconds",
			Help:      "Duration of reconciliation passes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_records_total",
			Help:      "Inventory records touched by reconciliation, by action.",
		}, []string{"channel", "action"}),
		detectorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detector_calls_total",
			Help:      "Calls to vision and OCR backends.",
		}, []string{"kind", "result"}),
		detectorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detector_call_duration_seconds",
			Help:      "Latency of vision and OCR backends.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.passes, m.passDuration, m.records, m.detectorCalls, m.detectorLatency, m.httpRequests)
	return m
}

// ObservePass 記錄一次對帳作業
func (m *Metrics) ObservePass(channel string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.passes.WithLabelValues(channel, result).Inc()
	m.passDuration.WithLabelValues(channel).Observe(d.Seconds())
}

// AddRecords 累計對帳動作（created/refreshed/refined/merged）
func (m *Metrics) AddRecords(channel, action string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.records.WithLabelValues(channel, action).Add(float64(n))
}

// ObserveDetector 記錄偵測服務呼叫
func (m *Metrics) ObserveDetector(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.detectorCalls.WithLabelValues(kind, result).Inc()
	m.detectorLatency.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveHTTP 記錄 HTTP 請求
func (m *Metrics) ObserveHTTP(method, route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}

// Registry 回傳底層 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 回傳 /metrics 處理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
