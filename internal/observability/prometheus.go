package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements Metrics on a private registry.
type Prometheus struct {
	reg *prometheus.Registry

	invocations     *prometheus.CounterVec
	invocationSec   prometheus.Histogram
	fetches         *prometheus.CounterVec
	fetchSec        prometheus.Histogram
	segmentFailures *prometheus.CounterVec
	persisted       *prometheus.CounterVec
	lookups         *prometheus.CounterVec
	upsertSec       prometheus.Histogram
	httpSec         *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

func NewPrometheus() *Prometheus {
	r := prometheus.NewRegistry()
	p := &Prometheus{
		reg: r,
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_invocations_total",
			Help: "Work items handled, by outcome.",
		}, []string{"outcome"}),
		invocationSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoice_invocation_seconds",
			Buckets: prometheus.DefBuckets,
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_document_fetches_total",
		}, []string{"ok"}),
		fetchSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoice_document_fetch_seconds",
			Buckets: prometheus.DefBuckets,
		}),
		segmentFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_segment_failures_total",
		}, []string{"kind"}),
		persisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_records_persisted_total",
		}, []string{"ok"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_record_lookups_total",
		}, []string{"source"}),
		upsertSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoice_record_write_seconds",
			Buckets: prometheus.DefBuckets,
		}),
		httpSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "invoice_http_request_seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		cacheHits:   prometheus.NewCounter(prometheus.CounterOpts{Name: "invoice_cache_hits_total"}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{Name: "invoice_cache_misses_total"}),
	}
	r.MustRegister(
		p.invocations, p.invocationSec, p.fetches, p.fetchSec, p.segmentFailures,
		p.persisted, p.lookups, p.upsertSec, p.httpSec, p.cacheHits, p.cacheMisses,
	)
	return p
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func (p *Prometheus) ObserveInvocation(outcome string, durMs float64) {
	p.invocations.WithLabelValues(outcome).Inc()
	p.invocationSec.Observe(durMs / 1000)
}

func (p *Prometheus) ObserveFetch(ok bool, durMs float64) {
	p.fetches.WithLabelValues(strconv.FormatBool(ok)).Inc()
	p.fetchSec.Observe(durMs / 1000)
}

func (p *Prometheus) IncSegmentFailure(kind string) {
	p.segmentFailures.WithLabelValues(kind).Inc()
}

func (p *Prometheus) IncPersisted(ok bool) {
	p.persisted.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func (p *Prometheus) ObserveLookup(source string, cacheMs, dbMs float64) {
	p.lookups.WithLabelValues(source).Inc()
}

func (p *Prometheus) ObserveUpsert(dbWriteMs float64) {
	p.upsertSec.Observe(dbWriteMs / 1000)
}

func (p *Prometheus) ObserveHTTP(method, route string, status int, durMs float64) {
	p.httpSec.WithLabelValues(method, route, strconv.Itoa(status)).Observe(durMs / 1000)
}

func (p *Prometheus) IncCacheHit()  { p.cacheHits.Inc() }
func (p *Prometheus) IncCacheMiss() { p.cacheMisses.Inc() }
