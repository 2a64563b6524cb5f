// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request outcomes. The zero value is not usable; create
// one with NewMetrics.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	unauthorized prometheus.Counter
}

// NewMetrics creates the client collectors and registers them with reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wayfare",
			Subsystem: "apiclient",
			Name:      "requests_total",
			Help:      "API requests by method and outcome class.",
		}, []string{"method", "class"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wayfare",
			Subsystem: "apiclient",
			Name:      "request_duration_seconds",
			Help:      "API request latency, including body decoding.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		unauthorized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wayfare",
			Subsystem: "apiclient",
			Name:      "unauthorized_total",
			Help:      "Responses with status 401.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.unauthorized)
	}
	return m
}

func (m *Metrics) observe(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, statusClass(status)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
	if status == 401 {
		m.unauthorized.Inc()
	}
}

// statusClass maps 0 to "network" and everything else to "2xx".."5xx".
func statusClass(status int) string {
	if status == 0 {
		return "network"
	}
	return strconv.Itoa(status/100) + "xx"
}
