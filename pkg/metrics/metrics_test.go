package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/branch-pos-api/pkg/metrics"
)

func TestMetrics_ExportaContadoresYGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveCheckout("success", 120*time.Millisecond)
	m.ObserveCheckout("rejected", 0)
	m.SetLowStock(3)
	m.IncStockRefresh("timer", nil)
	m.IncStockRefresh("push", errors.New("boom"))
	m.ObserveHTTP("GET", "/api/products", 200, 5*time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, mfs, "pos_checkouts_total", "result", "success"))
	assert.Equal(t, 1.0, counterValue(t, mfs, "pos_checkouts_total", "result", "rejected"))
	assert.Equal(t, 1.0, counterValue(t, mfs, "pos_low_stock_refreshes_total", "trigger", "push"))
	assert.Equal(t, 1.0, counterValue(t, mfs, "pos_http_requests_total", "route", "/api/products"))

	gauge := findFamily(mfs, "pos_low_stock_products")
	require.NotNil(t, gauge)
	assert.Equal(t, 3.0, gauge.GetMetric()[0].GetGauge().GetValue())
}

func TestMetrics_NilEsSeguro(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveCheckout("success", time.Second)
		m.SetLowStock(1)
		m.IncStockRefresh("timer", nil)
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
	assert.NotPanics(t, func() {
		metrics.New(nil).SetLowStock(2)
	})
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name, label, value string) float64 {
	t.Helper()
	mf := findFamily(mfs, name)
	require.NotNil(t, mf, "métrica %s no encontrada", name)
	for _, metric := range mf.GetMetric() {
		for _, l := range metric.GetLabel() {
			if l.GetName() == label && l.GetValue() == value {
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("métrica %s sin etiqueta %s=%s", name, label, value)
	return 0
}

func findFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}
