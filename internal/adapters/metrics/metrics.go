package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	logins           *prometheus.CounterVec
	registrations    prometheus.Counter
	noticesSent      *prometheus.CounterVec
	attendanceWrites *prometheus.CounterVec
	openStreams      prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kinder",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kinder",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kinder",
			Name:      "logins_total",
			Help:      "Login attempts by resolved role and outcome.",
		}, []string{"role", "outcome"}),
		registrations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "kinder",
			Name:      "registrations_total",
			Help:      "Successful parent registrations.",
		}),
		noticesSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kinder",
			Name:      "notices_sent_total",
			Help:      "Notices sent by type.",
		}, []string{"type"}),
		attendanceWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kinder",
			Name:      "attendance_records_total",
			Help:      "Attendance records written by status.",
		}, []string{"status"}),
		openStreams: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "kinder",
			Name:      "notice_streams_open",
			Help:      "Open parent notice streams.",
		}),
	}
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) Login(role, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(role, outcome).Inc()
}

func (m *Metrics) Registration() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

func (m *Metrics) NoticeSent(noticeType string) {
	if m == nil {
		return
	}
	m.noticesSent.WithLabelValues(noticeType).Inc()
}

func (m *Metrics) AttendanceWritten(status string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.attendanceWrites.WithLabelValues(status).Add(float64(n))
}

func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.openStreams.Inc()
}

func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.openStreams.Dec()
}
