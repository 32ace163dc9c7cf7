// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogama/reqx/httperr"
	"github.com/gogama/reqx/request"
)

type metricsStartKey struct{}

// Metrics is a plug-in which records Prometheus metrics about requests:
//
//   - <namespace>_requests_total, a counter of finished logical requests
//     by method and outcome (the status code, or an error category);
//   - <namespace>_attempts_total, a counter of network attempts by method;
//   - <namespace>_request_duration_seconds, a histogram of logical
//     request durations by method;
//   - <namespace>_requests_in_flight, a gauge of unfinished requests.
type Metrics struct {
	Base
	requests *prometheus.CounterVec
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewMetrics constructs a Metrics plug-in and registers its collectors
// with reg. An empty namespace defaults to "reqx".
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if namespace == "" {
		namespace = "reqx"
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Finished logical HTTP requests by method and outcome.",
		}, []string{"method", "outcome"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "HTTP request attempts sent to the transport by method.",
		}, []string{"method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of logical HTTP requests, including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Logical HTTP requests started but not finished.",
		}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.attempts, m.duration, m.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Prepare marks the start of the logical request on its first attempt.
func (m *Metrics) Prepare(r *http.Request, _ *request.Parameters, ui *request.UserInfo) *http.Request {
	if _, ok := ui.Lookup(metricsStartKey{}); !ok {
		ui.Set(metricsStartKey{}, time.Now())
		m.inFlight.Inc()
	}
	return r
}

// WillSend counts a network attempt.
func (m *Metrics) WillSend(r *http.Request, _ *request.Parameters, _ *request.UserInfo) {
	m.attempts.WithLabelValues(r.Method).Inc()
}

// DidFinish records the outcome and duration of the logical request.
func (m *Metrics) DidFinish(res *request.Result, p *request.Parameters, ui *request.UserInfo) {
	m.requests.WithLabelValues(p.Method(), outcome(res)).Inc()
	if start, ok := m.finish(ui); ok {
		m.duration.WithLabelValues(p.Method()).Observe(time.Since(start).Seconds())
	}
}

// WasCancelled records a cancelled request.
func (m *Metrics) WasCancelled(p *request.Parameters, ui *request.UserInfo) {
	m.requests.WithLabelValues(p.Method(), httperr.KindCanceled.String()).Inc()
	m.finish(ui)
}

func (m *Metrics) finish(ui *request.UserInfo) (time.Time, bool) {
	v, ok := ui.Lookup(metricsStartKey{})
	if !ok {
		return time.Time{}, false
	}
	ui.Delete(metricsStartKey{})
	m.inFlight.Dec()
	start, _ := v.(time.Time)
	return start, true
}

func outcome(res *request.Result) string {
	if res.Err != nil {
		if _, ok := httperr.StatusCodeOf(res.Err); !ok {
			return httperr.Kind(res.Err).String()
		}
	}
	if code := res.StatusCode(); code != 0 {
		return strconv.Itoa(code)
	}
	return httperr.KindOther.String()
}
