package stub

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics — счётчики заглушки, публикуемые через /metrics.
// Каждый Server держит собственный Registry, чтобы несколько экземпляров
// (например, в тестах) не конфликтовали регистрацией коллекторов.
type metrics struct {
	registry     *prometheus.Registry
	tokensIssued *prometheus.CounterVec
	refreshes    *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stub_tokens_issued_total",
			Help: "Number of token pairs issued, by grant.",
		}, []string{"grant"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stub_token_refresh_total",
			Help: "Number of refresh attempts, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.tokensIssued,
		m.refreshes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// handler отдаёт HTTP-обработчик /metrics для данного экземпляра.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
