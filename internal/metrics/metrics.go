package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/appetiteclub/miniapp/internal/cart"
	"github.com/appetiteclub/miniapp/internal/order"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "appetite"

// Outcomes recorded for order submissions.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics struct {
	registry *prometheus.Registry

	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	CartMutations *prometheus.CounterVec
	Submissions   *prometheus.CounterVec
	SubmitMS      *prometheus.HistogramVec
}

// New creates the service metrics on a private registry so several instances can coexist in tests.
func New(service string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by kind.",
		}, []string{"kind"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "order_submissions_total",
			Help:      "Order submissions by transport and outcome.",
		}, []string{"transport", "outcome"}),
		SubmitMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "order_submit_duration_ms",
			Help:      "Time spent in the order transport in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"transport"}),
	}

	m.registry.MustRegister(m.Requests, m.LatencyMS, m.CartMutations, m.Submissions, m.SubmitMS)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(handler string, status int, started time.Time) {
	m.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(started).Milliseconds()))
}

// CartObserver counts every cart mutation by kind.
func (m *Metrics) CartObserver() cart.Observer {
	return func(ev cart.Event) {
		m.CartMutations.WithLabelValues(string(ev.Kind)).Inc()
	}
}

// InstrumentTransport wraps t so every submission is counted and timed.
func (m *Metrics) InstrumentTransport(t order.Transport) order.Transport {
	return &instrumentedTransport{next: t, metrics: m}
}

type instrumentedTransport struct {
	next    order.Transport
	metrics *Metrics
}

func (t *instrumentedTransport) Name() string {
	return t.next.Name()
}

func (t *instrumentedTransport) Submit(ctx context.Context, req order.Request) (order.Confirmation, error) {
	started := time.Now()
	conf, err := t.next.Submit(ctx, req)

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	t.metrics.Submissions.WithLabelValues(t.next.Name(), outcome).Inc()
	t.metrics.SubmitMS.WithLabelValues(t.next.Name()).Observe(float64(time.Since(started).Milliseconds()))
	return conf, err
}
