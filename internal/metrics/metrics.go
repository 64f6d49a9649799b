// metrics - prometheus-коллекторы profiles-service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "profiles"

// Результаты применения payload.
const (
	ResultCreated  = "created"
	ResultPatched  = "patched"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Metrics - набор коллекторов сервиса.
type Metrics struct {
	Applies     *prometheus.CounterVec
	UserLookups *prometheus.CounterVec
	Tracked     prometheus.Gauge
}

// New создаёт коллекторы и регистрирует их в reg.
// reg == nil - коллекторы создаются, но никуда не регистрируются (удобно в тестах).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Applies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payload_applies_total",
			Help:      "Profile payloads applied, by result.",
		}, []string{"result"}),
		UserLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_cache_lookups_total",
			Help:      "User cache lookups, by hit or miss.",
		}, []string{"result"}),
		Tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked",
			Help:      "Profiles currently held in memory.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Applies, m.UserLookups, m.Tracked)
	}

	return m
}

// ObserveApply учитывает исход применения payload.
func (m *Metrics) ObserveApply(result string) {
	if m == nil {
		return
	}

	m.Applies.WithLabelValues(result).Inc()
}

// ObserveUserLookup - cache.LookupObserver для кэша пользователей.
func (m *Metrics) ObserveUserLookup(hit bool) {
	if m == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}

	m.UserLookups.WithLabelValues(result).Inc()
}

// SetTracked выставляет число профилей в памяти.
func (m *Metrics) SetTracked(n int) {
	if m == nil {
		return
	}

	m.Tracked.Set(float64(n))
}
