// Package metrics exposes Prometheus counters for cache efficiency and visit
// accounting.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "url_shortener"

type Metrics struct {
	cacheLookups  *prometheus.CounterVec
	urlsShortened prometheus.Counter
	visits        *prometheus.CounterVec
}

// New registers the counters on reg. Registering twice on the same registry panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Short code lookups against the fast cache, by result.",
		}, []string{"result"}),
		urlsShortened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "urls_shortened_total",
			Help:      "URLs stored with a freshly generated short code.",
		}),
		visits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_total",
			Help:      "Visits handed to the accountant, by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) URLShortened() {
	m.urlsShortened.Inc()
}

func (m *Metrics) VisitLogged(recorded bool) {
	outcome := "dropped"
	if recorded {
		outcome = "recorded"
	}
	m.visits.WithLabelValues(outcome).Inc()
}

// Handler serves the metrics gathered by reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
