package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 应用指标集合
//
// 使用独立 Registry，测试中可多次构造而不触发重复注册。
// 所有记录方法对 nil 接收者安全，未启用指标时直接传 nil。
type Metrics struct {
	registry *prometheus.Registry

	remindersSent    prometheus.Counter
	remindersFailed  prometheus.Counter
	remindersSkipped *prometheus.CounterVec
	cycleDuration    prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New 创建并注册全部指标
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agenda_reminders_sent_total",
			Help: "Total number of reminder emails sent successfully",
		}),
		remindersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agenda_reminders_failed_total",
			Help: "Total number of reminder emails that failed to send",
		}),
		remindersSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agenda_reminders_skipped_total",
			Help: "Total number of reminders skipped during evaluation",
		}, []string{"reason"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agenda_reminder_cycle_seconds",
			Help:    "Duration of reminder evaluation cycles in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms ~ 40s
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agenda_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agenda_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.remindersSent,
		m.remindersFailed,
		m.remindersSkipped,
		m.cycleDuration,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry 返回底层 Registry
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler 返回 /metrics 的 HTTP 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ── 提醒 ──

func (m *Metrics) ReminderSent() {
	if m != nil {
		m.remindersSent.Inc()
	}
}

func (m *Metrics) ReminderFailed() {
	if m != nil {
		m.remindersFailed.Inc()
	}
}

func (m *Metrics) ReminderSkipped(reason string) {
	if m != nil {
		m.remindersSkipped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ObserveCycle(d time.Duration) {
	if m != nil {
		m.cycleDuration.Observe(d.Seconds())
	}
}

// ── HTTP ──

// ObserveRequest 记录一次 HTTP 请求；route 为路由模板而非原始路径
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
