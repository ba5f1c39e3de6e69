package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "twitter_client"

// Metrics holds the collectors the client reports. A nil *Metrics is a valid
// no-op receiver so components can run without a registry.
type Metrics struct {
	cacheApplies       *prometheus.CounterVec
	cacheInvalidations prometheus.Counter
	tokenRefreshes     *prometheus.CounterVec
	httpRetries        prometheus.Counter
	streamEvents       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheApplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_applies_total",
			Help:      "Optimistic cache edits fanned out, by entity kind.",
		}, []string{"entity"}),
		cacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Cache regions dropped for refetch.",
		}),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Access token refresh attempts, by result.",
		}, []string{"result"}),
		httpRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_retries_total",
			Help:      "Requests replayed after a token refresh.",
		}),
		streamEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_total",
			Help:      "Notification stream frames, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.cacheApplies, m.cacheInvalidations, m.tokenRefreshes, m.httpRetries, m.streamEvents)

	return m
}

func (m *Metrics) CacheApply(entity string) {
	if m == nil {
		return
	}

	m.cacheApplies.WithLabelValues(entity).Inc()
}

func (m *Metrics) CacheInvalidation() {
	if m == nil {
		return
	}

	m.cacheInvalidations.Inc()
}

func (m *Metrics) TokenRefresh(result string) {
	if m == nil {
		return
	}

	m.tokenRefreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) HTTPRetry() {
	if m == nil {
		return
	}

	m.httpRetries.Inc()
}

func (m *Metrics) StreamEvent(kind string) {
	if m == nil {
		return
	}

	m.streamEvents.WithLabelValues(kind).Inc()
}
