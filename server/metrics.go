package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry

	turns     *prometheus.CounterVec
	toolCalls *prometheus.CounterVec
	leads     prometheus.Counter
}

func newMetrics(sessionCount func() float64) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_turns_total",
			Help: "Completed chat turns by outcome.",
		}, []string{"outcome"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_tool_invocations_total",
			Help: "Tool invocations executed during turns.",
		}, []string{"tool", "success"}),
		leads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assistant_leads_captured_total",
			Help: "Leads appended to the ledger via the capture tool.",
		}),
	}

	sessions := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "assistant_active_sessions",
		Help: "Live sessions held by the registry.",
	}, sessionCount)

	m.registry.MustRegister(m.turns, m.toolCalls, m.leads, sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
