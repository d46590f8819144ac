// Package metrics exposes Prometheus instrumentation for the HTTP API and the maintenance workflow.
package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"gearguard/internal/model"
	"gearguard/internal/repository"
)

const namespace = "gearguard"

// CountsSource provides the store summary read at scrape time.
type CountsSource interface {
	Counts() repository.StoreCounts
}

// Recorder records application metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	httpRequests     *prom.CounterVec
	httpDuration     *prom.HistogramVec
	boardTransitions *prom.CounterVec
	requestsCreated  *prom.CounterVec
	notifications    *prom.CounterVec
}

// NewRecorder constructs the collectors and registers them on reg.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "method"}),
		boardTransitions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "board_transitions_total",
			Help:      "Kanban card moves by source and target column",
		}, []string{"from", "to"}),
		requestsCreated: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "maintenance_requests_created_total",
			Help:      "Maintenance requests created by type",
		}, []string{"type"}),
		notifications: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by outcome",
		}, []string{"result"}),
	}
	reg.MustRegister(r.httpRequests, r.httpDuration, r.boardTransitions, r.requestsCreated, r.notifications)
	return r
}

// RegisterStoreGauges exposes equipment, request and overdue counts read from src at scrape time.
func RegisterStoreGauges(reg *prom.Registry, src CountsSource) {
	if reg == nil || src == nil {
		return
	}
	reg.MustRegister(
		prom.NewGaugeFunc(prom.GaugeOpts{Namespace: namespace, Name: "equipment", Help: "Equipment records in the store"}, func() float64 {
			return float64(src.Counts().Equipment)
		}),
		prom.NewGaugeFunc(prom.GaugeOpts{Namespace: namespace, Name: "maintenance_requests", Help: "Maintenance requests in the store"}, func() float64 {
			return float64(src.Counts().Requests)
		}),
		prom.NewGaugeFunc(prom.GaugeOpts{Namespace: namespace, Name: "maintenance_requests_overdue", Help: "Requests whose overdue flag was set at last write"}, func() float64 {
			return float64(src.Counts().Overdue)
		}),
	)
}

// RegisterRuntimeCollectors adds the Go runtime and process collectors.
func RegisterRuntimeCollectors(reg *prom.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
}

func (r *Recorder) ObserveHTTPRequest(route, method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (r *Recorder) IncBoardTransition(from, to model.Status) {
	if r == nil {
		return
	}
	r.boardTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (r *Recorder) IncRequestCreated(t model.RequestType) {
	if r == nil {
		return
	}
	r.requestsCreated.WithLabelValues(string(t)).Inc()
}

func (r *Recorder) IncNotification(success bool) {
	if r == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	r.notifications.WithLabelValues(res).Inc()
}
