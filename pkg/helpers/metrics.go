package helpers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "online_school"

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	Registrations *prometheus.CounterVec // role, result
	Logins        *prometheus.CounterVec // result
	Uploads       *prometheus.CounterVec // bucket, result

	// worker
	EmailJobs *prometheus.CounterVec // template, result=sent|retry|dropped
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "accounts",
				Name:      "registrations_total",
				Help:      "Registration attempts by role and result.",
			},
			[]string{"role", "result"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "accounts",
				Name:      "logins_total",
				Help:      "Login attempts by result.",
			},
			[]string{"result"},
		),
		Uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "blobs",
				Name:      "uploads_total",
				Help:      "Stored files by bucket and result.",
			},
			[]string{"bucket", "result"},
		),
		EmailJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "email",
				Name:      "jobs_total",
				Help:      "Email jobs handled by the worker.",
			},
			[]string{"template", "result"},
		),
	}
	reg.MustRegister(p.RequestsTotal, p.RequestsDuration, p.InFlight, p.Registrations, p.Logins, p.Uploads, p.EmailJobs)
	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// The observers below are nil-safe so services can run without metrics.

func (p *Prom) ObserveRegistration(role string, err error) {
	if p == nil {
		return
	}
	p.Registrations.WithLabelValues(role, result(err)).Inc()
}

func (p *Prom) ObserveLogin(err error) {
	if p == nil {
		return
	}
	p.Logins.WithLabelValues(result(err)).Inc()
}

func (p *Prom) ObserveUpload(bucket string, err error) {
	if p == nil {
		return
	}
	p.Uploads.WithLabelValues(bucket, result(err)).Inc()
}

func (p *Prom) ObserveEmailJob(template, res string) {
	if p == nil {
		return
	}
	p.EmailJobs.WithLabelValues(template, res).Inc()
}
