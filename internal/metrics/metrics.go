// Package metrics keeps request and model counters on a private Prometheus
// registry and exposes them in the text exposition format.
package metrics

import (
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const namespace = "solarbmi"

// Registry holds the process counters. The zero value is not usable; call New.
type Registry struct {
	reg         *prometheus.Registry
	requests    *prometheus.CounterVec
	predictions prometheus.Counter
	modelLoads  *prometheus.CounterVec
}

// New creates a registry with the service counters plus the Go runtime and
// process collectors.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests handled, by route and status code.",
		}, []string{"route", "code"}),
		predictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Successful model inferences.",
		}),
		modelLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_loads_total",
			Help:      "Model artifact load attempts, by result.",
		}, []string{"result"}),
	}

	r.reg.MustRegister(
		r.requests,
		r.predictions,
		r.modelLoads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Export both results before the first load attempt.
	r.modelLoads.WithLabelValues("failure")
	r.modelLoads.WithLabelValues("success")
	return r
}

// ObserveRequest counts one handled request
func (r *Registry) ObserveRequest(route string, code int) {
	r.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// ObservePrediction counts one successful model inference
func (r *Registry) ObservePrediction() {
	r.predictions.Inc()
}

// ObserveModelLoad counts a model load attempt
func (r *Registry) ObserveModelLoad(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	r.modelLoads.WithLabelValues(result).Inc()
}

// Families gathers every registered metric family, sorted by name
func (r *Registry) Families() ([]*dto.MetricFamily, error) {
	return r.reg.Gather()
}

// WriteText writes every gathered family in text exposition format
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.Families()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the registry over HTTP with content negotiation
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
