package telemetry

import (
	"strings"

	"bastion/config"
	"bastion/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric struct；未啟用時所有 vector 皆為 nil，方法呼叫為 no-op
type Metric struct {
	HttpRequestsTotal    *prometheus.CounterVec
	HttpRequestDuration  *prometheus.HistogramVec
	ResponseSuccessTotal *prometheus.CounterVec
	ResponseFailTotal    *prometheus.CounterVec
	AccessDecisionTotal  *prometheus.CounterVec
	RateLimitedTotal     *prometheus.CounterVec
	config               *config.Configuration
}

// NewMetric 建立所有指標
func NewMetric(config *config.Configuration) *Metric {
	if config == nil || !config.Telemetry.Metric.Enabled {
		return &Metric{}
	}
	buckets := prometheus.DefBuckets
	if len(config.Telemetry.Metric.Buckets) > 0 {
		buckets = config.Telemetry.Metric.Buckets
	}
	prefix := metricPrefix(config.App.Name)
	return &Metric{
		config: config,
		HttpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricHttpRequestsTotal),
				Help: "Total received API requests",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		HttpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + string(core.MetricHttpRequestDuration),
				Help:    "Request handling duration (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelEndpoint),
		),
		ResponseSuccessTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricResponseSuccessTotal),
				Help: "Successful response count",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		ResponseFailTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricResponseFailTotal),
				Help: "Failed response count",
			},
			labelNames(core.MetricLabelReason),
		),
		AccessDecisionTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricAccessDecisionTotal),
				Help: "Authorization decisions by outcome",
			},
			labelNames(core.MetricLabelOutcome),
		),
		RateLimitedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricRateLimitTotal),
				Help: "Requests rejected by the rate limiter",
			},
			labelNames(core.MetricLabelEndpoint),
		),
	}
}

func (m *Metric) ObserveRequest(endpoint, status string, seconds float64) {
	if m == nil || m.HttpRequestsTotal == nil {
		return
	}
	m.HttpRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.HttpRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Metric) IncResponseSuccess(endpoint, status string) {
	if m == nil || m.ResponseSuccessTotal == nil {
		return
	}
	m.ResponseSuccessTotal.WithLabelValues(endpoint, status).Inc()
}

func (m *Metric) IncResponseFail(reason string) {
	if m == nil || m.ResponseFailTotal == nil {
		return
	}
	m.ResponseFailTotal.WithLabelValues(reason).Inc()
}

func (m *Metric) IncAccessDecision(outcome string) {
	if m == nil || m.AccessDecisionTotal == nil {
		return
	}
	m.AccessDecisionTotal.WithLabelValues(outcome).Inc()
}

func (m *Metric) IncRateLimited(endpoint string) {
	if m == nil || m.RateLimitedTotal == nil {
		return
	}
	m.RateLimitedTotal.WithLabelValues(endpoint).Inc()
}

// metricPrefix prometheus 名稱只允許 [a-zA-Z0-9_:]
func metricPrefix(appName string) string {
	if appName == "" {
		return ""
	}
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(appName) + "_"
}

// labelNames helper: LabelName slice 轉成 []string
func labelNames(labels ...core.MetricLabelName) []string {
	strs := make([]string, len(labels))
	for i, l := range labels {
		strs[i] = string(l)
	}
	return strs
}
