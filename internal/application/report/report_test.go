package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/application/report"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/memtest"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var (
	bogota = time.FixedZone("COT", -5*3600)
	admin  = &identity.Session{UserID: "admin", Role: entity.RoleAdmin}
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func order(id, branch, customer string, at time.Time, total, cost string) *entity.Order {
	t, c := d(total), d(cost)
	return &entity.Order{
		ID:            id,
		BranchID:      branch,
		CustomerName:  customer,
		PaymentMethod: entity.PaymentCash,
		Total:         t,
		TotalCost:     c,
		TotalProfit:   t.Sub(c),
		CreatedAt:     at,
	}
}

func seed(t *testing.T, db *memtest.Store, orders ...*entity.Order) {
	t.Helper()
	for _, o := range orders {
		require.NoError(t, db.Orders().Create(context.Background(), o))
	}
}

func labels(series []report.PeriodSummary) []string {
	out := make([]string, 0, len(series))
	for _, p := range series {
		out = append(out, p.Label)
	}
	return out
}

type fakeExporter struct{ err error }

func (fakeExporter) ContentType() string { return "text/plain" }
func (fakeExporter) Extension() string   { return "txt" }
func (f fakeExporter) Export(r *dto.SalesReportResponse) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(r.Summary.TotalSales), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Load
// ──────────────────────────────────────────────────────────────────────────────

func TestLoad_ValoresPorDefecto(t *testing.T) {
	db := memtest.NewStore()
	seed(t, db,
		&entity.Order{ID: "o-1", BranchID: "b-1", CreatedAt: time.Now()},
		order("o-2", "b-1", "Ana", time.Now(), "10", "12"),
	)
	agg := report.NewAggregator(db.Orders(), bogota)

	views, err := agg.Load(context.Background(), admin, "")
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := map[string]report.OrderView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	assert.Equal(t, entity.WalkInCustomer, byID["o-1"].CustomerName)
	assert.True(t, byID["o-1"].TotalCost.IsZero())
	assert.False(t, byID["o-1"].HasNegativeProfit)
	assert.True(t, byID["o-2"].HasNegativeProfit)
	assert.Equal(t, bogota, byID["o-2"].Date.Location())
}

func TestLoad_CajeroSoloVeSuSucursal(t *testing.T) {
	db := memtest.NewStore()
	seed(t, db,
		order("o-1", "b-1", "Ana", time.Now(), "10", "5"),
		order("o-2", "b-2", "Luis", time.Now(), "10", "5"),
	)
	agg := report.NewAggregator(db.Orders(), bogota)
	cashier := &identity.Session{UserID: "u", Role: entity.RoleUser, BranchID: "b-2"}

	views, err := agg.Load(context.Background(), cashier, "b-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "o-2", views[0].ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Filter
// ──────────────────────────────────────────────────────────────────────────────

func TestFilter_VentanaDiariaEnZonaConfigurada(t *testing.T) {
	agg := report.NewAggregator(memtest.NewStore().Orders(), bogota)
	views := []report.OrderView{
		// 2026-03-01 22:00 en Bogotá
		{ID: "tarde", Date: time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC)},
		// 2026-03-02 00:00 en Bogotá
		{ID: "siguiente", Date: time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC)},
		{ID: "inicio", Date: time.Date(2026, 3, 1, 0, 0, 0, 0, bogota)},
		{ID: "anterior", Date: time.Date(2026, 2, 28, 23, 59, 59, 0, bogota)},
	}
	ref := time.Date(2026, 3, 1, 12, 0, 0, 0, bogota)

	got := agg.Filter(views, report.Criteria{Bucket: report.BucketDaily, ReferenceDate: ref})
	ids := []string{}
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"tarde", "inicio"}, ids)
}

func TestFilter_VentanasMensualYAnual(t *testing.T) {
	agg := report.NewAggregator(memtest.NewStore().Orders(), time.UTC)
	views := []report.OrderView{
		{ID: "a", Date: time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)},
		{ID: "b", Date: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "c", Date: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	ref := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.Len(t, agg.Filter(views, report.Criteria{Bucket: report.BucketMonthly, ReferenceDate: ref}), 1)
	assert.Len(t, agg.Filter(views, report.Criteria{Bucket: report.BucketYearly, ReferenceDate: ref}), 2)
}

func TestFilter_BusquedaYSucursal(t *testing.T) {
	agg := report.NewAggregator(memtest.NewStore().Orders(), time.UTC)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	views := []report.OrderView{
		{ID: "ord-ABC", CustomerName: "Jane Doe", BranchID: "b-1", Date: now},
		{ID: "ord-xyz", CustomerName: "Walk-in Customer", BranchID: "b-1", Date: now},
		{ID: "ord-jan", CustomerName: "Luis", BranchID: "b-2", Date: now},
	}
	c := report.Criteria{Bucket: report.BucketDaily, ReferenceDate: now}

	c.Search = "JANE"
	assert.Len(t, agg.Filter(views, c), 1)

	c.Search = "abc"
	assert.Len(t, agg.Filter(views, c), 1, "también busca por id")

	c.Search = "jan"
	assert.Len(t, agg.Filter(views, c), 2)

	c.BranchID = "b-2"
	got := agg.Filter(views, c)
	require.Len(t, got, 1)
	assert.Equal(t, "ord-jan", got[0].ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Aggregate / Summarize
// ──────────────────────────────────────────────────────────────────────────────

func TestAggregate_MensualOrdenCronologico(t *testing.T) {
	agg := report.NewAggregator(memtest.NewStore().Orders(), time.UTC)
	views := []report.OrderView{
		{Date: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), Total: d("10"), TotalCost: d("4"), TotalProfit: d("6")},
		{Date: time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC), Total: d("5"), TotalCost: d("6"), TotalProfit: d("-1"), HasNegativeProfit: true},
		{Date: time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC), Total: d("1"), TotalCost: d("1"), TotalProfit: d("0")},
		{Date: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), Total: d("2.50"), TotalCost: d("1"), TotalProfit: d("1.50")},
	}

	series := agg.Aggregate(views, report.BucketMonthly)
	assert.Equal(t, []string{"Dec 2025", "Jan 2026", "Feb 2026"}, labels(series))

	feb := series[2]
	assert.Equal(t, 2, feb.Orders)
	assert.Equal(t, "12.50", feb.TotalSales.StringFixed(2))
	assert.Equal(t, "7.50", feb.TotalProfit.StringFixed(2))
	assert.Equal(t, 1, series[0].OrdersWithNegativeProfit)
}

func TestAggregate_DiarioYAnual(t *testing.T) {
	agg := report.NewAggregator(memtest.NewStore().Orders(), time.UTC)
	views := []report.OrderView{
		{Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	assert.Equal(t, []string{"Jul 01", "Feb 28", "Mar 10"}, labels(agg.Aggregate(views, report.BucketDaily)))
	assert.Equal(t, []string{"2024", "2026"}, labels(agg.Aggregate(views, report.BucketYearly)))
	assert.Empty(t, agg.Aggregate(nil, report.BucketDaily))
}

// La etiqueta diaria no lleva año; el mismo día de dos años no se mezcla.
func TestAggregate_MismoDiaEnDistintosAnios(t *testing.T) {
	agg := report.NewAggregator(memtest.NewStore().Orders(), time.UTC)
	views := []report.OrderView{
		{Date: time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC), Total: d("7"), TotalCost: d("2"), TotalProfit: d("5")},
		{Date: time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC), Total: d("3"), TotalCost: d("1"), TotalProfit: d("2")},
		{Date: time.Date(2026, 1, 2, 18, 0, 0, 0, time.UTC), Total: d("1"), TotalCost: d("1"), TotalProfit: d("0")},
	}

	series := agg.Aggregate(views, report.BucketDaily)
	require.Len(t, series, 2)
	assert.Equal(t, []string{"Jan 02", "Jan 02"}, labels(series))
	assert.Equal(t, 2025, series[0].Start.Year())
	assert.Equal(t, 1, series[0].Orders)
	assert.Equal(t, "3.00", series[0].TotalSales.StringFixed(2))
	assert.Equal(t, 2026, series[1].Start.Year())
	assert.Equal(t, 2, series[1].Orders)
	assert.Equal(t, "8.00", series[1].TotalSales.StringFixed(2))
}

func TestSummarize_MargenDelConjunto(t *testing.T) {
	s := report.Summarize([]report.OrderView{
		{Total: d("45"), TotalCost: d("30"), TotalProfit: d("15")},
		{Total: d("15"), TotalCost: d("10"), TotalProfit: d("5")},
	})
	assert.Equal(t, 2, s.Orders)
	assert.Equal(t, "60.00", s.TotalSales.StringFixed(2))
	assert.Equal(t, "33.33", s.ProfitMargin.StringFixed(2))

	empty := report.Summarize(nil)
	assert.True(t, empty.ProfitMargin.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Service
// ──────────────────────────────────────────────────────────────────────────────

func TestService_ReporteDelDia(t *testing.T) {
	db := memtest.NewStore()
	day := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	seed(t, db,
		order("o-1", "b-1", "Jane", day, "45", "30"),
		order("o-2", "b-1", "", day.Add(time.Hour), "8", "10"),
		order("o-3", "b-1", "Ana", day.AddDate(0, 0, -1), "100", "50"),
	)
	svc := report.NewService(report.NewAggregator(db.Orders(), time.UTC), nil)

	out, err := svc.Report(context.Background(), admin, dto.SalesReportQuery{Date: "2026-03-10"})
	require.NoError(t, err)

	assert.Equal(t, "daily", out.Bucket)
	assert.Equal(t, "2026-03-10", out.ReferenceDate)
	require.Len(t, out.Orders, 2)
	assert.Equal(t, "o-2", out.Orders[0].ID, "más recientes primero")
	assert.Equal(t, entity.WalkInCustomer, out.Orders[0].CustomerName)
	assert.True(t, out.Orders[0].HasNegativeProfit)

	require.Len(t, out.Series, 1)
	assert.Equal(t, "Mar 10", out.Series[0].Label)
	assert.Equal(t, "53.00", out.Series[0].TotalSales)
	assert.Equal(t, 1, out.Series[0].OrdersWithNegativeProfit)

	assert.Equal(t, "53.00", out.Summary.TotalSales)
	assert.Equal(t, "13.00", out.Summary.TotalProfit)
	assert.Equal(t, "24.5", out.Summary.ProfitMargin)
}

func TestService_ParametrosInvalidos(t *testing.T) {
	svc := report.NewService(report.NewAggregator(memtest.NewStore().Orders(), time.UTC), nil)
	ctx := context.Background()

	_, err := svc.Report(ctx, admin, dto.SalesReportQuery{Bucket: "weekly"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Report(ctx, admin, dto.SalesReportQuery{Date: "10/03/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Export(ctx, admin, dto.SalesReportQuery{Format: "csv"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_Export(t *testing.T) {
	db := memtest.NewStore()
	seed(t, db, order("o-1", "b-1", "Jane", time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), "45", "30"))
	svc := report.NewService(report.NewAggregator(db.Orders(), time.UTC), map[string]report.Exporter{
		"txt":  fakeExporter{},
		"roto": fakeExporter{err: errors.New("boom")},
	})
	ctx := context.Background()

	f, err := svc.Export(ctx, admin, dto.SalesReportQuery{Date: "2026-03-10", Format: "TXT"})
	require.NoError(t, err)
	assert.Equal(t, "ventas-daily-2026-03-10.txt", f.Name)
	assert.Equal(t, "text/plain", f.ContentType)
	assert.Equal(t, "45.00", string(f.Data))

	_, err = svc.Export(ctx, admin, dto.SalesReportQuery{Format: "roto"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
}
