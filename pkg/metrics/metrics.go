package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics agrupa los instrumentos Prometheus del servicio. Un *Metrics nil es válido y no registra nada.
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	checkouts      *prometheus.CounterVec
	checkoutTime   prometheus.Histogram
	lowStock       prometheus.Gauge
	stockRefreshes *prometheus.CounterVec
}

// New registra los instrumentos en el registerer indicado.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_http_requests_total",
			Help: "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pos_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_checkouts_total",
			Help: "Intentos de checkout por resultado.",
		}, []string{"result"}),
		checkoutTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pos_checkout_commit_seconds",
			Help:    "Duración de la transacción de checkout.",
			Buckets: prometheus.DefBuckets,
		}),
		lowStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pos_low_stock_products",
			Help: "Productos con stock por debajo del umbral.",
		}),
		stockRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_low_stock_refreshes_total",
			Help: "Recalculos del monitor de stock bajo por disparador y resultado.",
		}, []string{"trigger", "result"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.checkouts, m.checkoutTime, m.lowStock, m.stockRefreshes)
	return m
}

// ObserveHTTP registra una petición atendida.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	route = normalizeLabel(route)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveCheckout registra un checkout; result es "success", "rejected" o "failed".
func (m *Metrics) ObserveCheckout(result string, d time.Duration) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
	if d > 0 {
		m.checkoutTime.Observe(d.Seconds())
	}
}

// SetLowStock fija el número actual de productos en stock bajo.
func (m *Metrics) SetLowStock(n int) {
	if m == nil || m.lowStock == nil {
		return
	}
	m.lowStock.Set(float64(n))
}

// IncStockRefresh cuenta un recálculo del monitor; trigger es "timer", "push" o "demand".
func (m *Metrics) IncStockRefresh(trigger string, err error) {
	if m == nil || m.stockRefreshes == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.stockRefreshes.WithLabelValues(normalizeLabel(trigger), result).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
