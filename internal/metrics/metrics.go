// Package metrics はPrometheusの業務指標
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// nilのままでも呼べる（テストでは渡さない）
type Metrics struct {
	registry *prometheus.Registry

	TransfersTotal   *prometheus.CounterVec
	SalesTotal       *prometheus.CounterVec
	SaleAmountTotal  prometheus.Counter
	TxConflictsTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TransfersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "transfers_total",
			Help:      "Warehouse to storefront transfers by result",
		}, []string{"result"}),
		SalesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "sales_total",
			Help:      "Sale commits by result and payment method",
		}, []string{"result", "payment_method"}),
		SaleAmountTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "sale_amount_total",
			Help:      "Sum of committed sale totals",
		}),
		TxConflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "tx_conflicts_total",
			Help:      "Serialization conflicts that caused a transaction retry",
		}, []string{"store"}),
	}
	m.registry.MustRegister(
		m.TransfersTotal,
		m.SalesTotal,
		m.SaleAmountTotal,
		m.TxConflictsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveTransfer(result string) {
	if m == nil {
		return
	}
	m.TransfersTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSale(result string, method string, amount float64) {
	if m == nil {
		return
	}
	m.SalesTotal.WithLabelValues(result, method).Inc()
	if amount > 0 {
		m.SaleAmountTotal.Add(amount)
	}
}

func (m *Metrics) ObserveConflict(store string) {
	if m == nil {
		return
	}
	m.TxConflictsTotal.WithLabelValues(store).Inc()
}
