package odatahttp

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeDecoded  = "decoded"
	OutcomeRejected = "rejected"
)

// Metrics tracks query decoding and page cache usage.
//
// Metrics:
//   - <namespace>_odata_decodes_total: decoded query strings by outcome
//   - <namespace>_odata_cache_hits_total: page cache hits by collection
//   - <namespace>_odata_cache_misses_total: page cache misses by collection
type Metrics struct {
	decodesTotal     *prometheus.CounterVec
	cacheHitsTotal   *prometheus.CounterVec
	cacheMissesTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(namespace string, registry prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		decodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "odata",
				Name:      "decodes_total",
				Help:      "Total number of decoded query strings",
			},
			[]string{"outcome"},
		),
		cacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "odata",
				Name:      "cache_hits_total",
				Help:      "Total number of page cache hits",
			},
			[]string{"collection"},
		),
		cacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "odata",
				Name:      "cache_misses_total",
				Help:      "Total number of page cache misses",
			},
			[]string{"collection"},
		),
	}

	registry.MustRegister(
		metrics.decodesTotal,
		metrics.cacheHitsTotal,
		metrics.cacheMissesTotal,
	)

	return metrics
}

// RecordDecode is safe to call on a nil receiver.
func (metrics *Metrics) RecordDecode(err error) {
	if metrics == nil {
		return
	}

	outcome := OutcomeDecoded
	if err != nil {
		outcome = OutcomeRejected
	}

	metrics.decodesTotal.WithLabelValues(outcome).Inc()
}

// RecordCache is safe to call on a nil receiver.
func (metrics *Metrics) RecordCache(collection string, hit bool) {
	if metrics == nil {
		return
	}

	if hit {
		metrics.cacheHitsTotal.WithLabelValues(collection).Inc()
		return
	}

	metrics.cacheMissesTotal.WithLabelValues(collection).Inc()
}

func (metrics *Metrics) DecodesTotal() *prometheus.CounterVec {
	return metrics.decodesTotal
}

func (metrics *Metrics) CacheHitsTotal() *prometheus.CounterVec {
	return metrics.cacheHitsTotal
}

func (metrics *Metrics) CacheMissesTotal() *prometheus.CounterVec {
	return metrics.cacheMissesTotal
}
