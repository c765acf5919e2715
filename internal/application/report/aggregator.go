// Package report arma el reporte histórico de ventas: carga, filtrado por periodo,
// series agregadas por bucket y exportación.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
	"github.com/jhoicas/branch-pos-api/internal/domain/sales"
)

// Bucket granularidad del periodo del reporte.
type Bucket string

const (
	BucketDaily   Bucket = "daily"
	BucketMonthly Bucket = "monthly"
	BucketYearly  Bucket = "yearly"
)

// ParseBucket valida el bucket; vacío equivale a daily.
func ParseBucket(s string) (Bucket, bool) {
	switch Bucket(strings.ToLower(strings.TrimSpace(s))) {
	case "", BucketDaily:
		return BucketDaily, true
	case BucketMonthly:
		return BucketMonthly, true
	case BucketYearly:
		return BucketYearly, true
	}
	return "", false
}

// Label formatea la fecha según el bucket: "Jan 02", "Jan 2006" o "2006".
func (b Bucket) Label(t time.Time) string {
	switch b {
	case BucketMonthly:
		return t.Format("Jan 2006")
	case BucketYearly:
		return t.Format("2006")
	default:
		return t.Format("Jan 02")
	}
}

// Start inicio del periodo que contiene t, en la zona de t.
func (b Bucket) Start(t time.Time) time.Time {
	switch b {
	case BucketMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case BucketYearly:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

// End inicio del periodo siguiente (exclusivo).
func (b Bucket) End(t time.Time) time.Time {
	start := b.Start(t)
	switch b {
	case BucketMonthly:
		return start.AddDate(0, 1, 0)
	case BucketYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// OrderView orden normalizada para el reporte.
type OrderView struct {
	ID                string
	CustomerName      string
	BranchID          string
	PaymentMethod     string
	Date              time.Time
	Total             decimal.Decimal
	TotalCost         decimal.Decimal
	TotalProfit       decimal.Decimal
	ProfitMargin      decimal.Decimal
	HasNegativeProfit bool
	Items             []entity.OrderItem
}

// Criteria filtros del reporte. BranchID vacío incluye todas las sucursales.
type Criteria struct {
	Search        string
	Bucket        Bucket
	ReferenceDate time.Time
	BranchID      string
}

// PeriodSummary punto de la serie agregada.
type PeriodSummary struct {
	Label                    string
	Start                    time.Time
	TotalSales               decimal.Decimal
	TotalCost                decimal.Decimal
	TotalProfit              decimal.Decimal
	Orders                   int
	OrdersWithNegativeProfit int
}

// Summary totales del conjunto filtrado.
type Summary struct {
	TotalSales   decimal.Decimal
	TotalCost    decimal.Decimal
	TotalProfit  decimal.Decimal
	ProfitMargin decimal.Decimal
	Orders       int
}

// Aggregator lee órdenes y las agrupa en la zona horaria configurada.
type Aggregator struct {
	orders repository.OrderRepository
	loc    *time.Location
}

// NewAggregator construye el agregador. loc nil usa UTC.
func NewAggregator(orders repository.OrderRepository, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{orders: orders, loc: loc}
}

// Location zona horaria de los periodos.
func (a *Aggregator) Location() *time.Location { return a.loc }

// Load trae las órdenes visibles para la sesión con los valores por defecto aplicados.
func (a *Aggregator) Load(ctx context.Context, sess *identity.Session, branchFilter string) ([]OrderView, error) {
	orders, err := a.orders.List(ctx, sess.ScopeBranch(branchFilter))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, a.toView(o))
	}
	return views, nil
}

func (a *Aggregator) toView(o *entity.Order) OrderView {
	name := strings.TrimSpace(o.CustomerName)
	if name == "" {
		name = entity.WalkInCustomer
	}
	// decimal.Decimal{} vale 0, así que los importes ausentes quedan en cero
	return OrderView{
		ID:                o.ID,
		CustomerName:      name,
		BranchID:          o.BranchID,
		PaymentMethod:     o.PaymentMethod,
		Date:              o.CreatedAt.In(a.loc),
		Total:             o.Total,
		TotalCost:         o.TotalCost,
		TotalProfit:       o.TotalProfit,
		ProfitMargin:      o.ProfitMargin,
		HasNegativeProfit: o.TotalProfit.IsNegative(),
		Items:             o.Items,
	}
}

// Filter aplica en orden: búsqueda por cliente o id, ventana del bucket alrededor de la
// fecha de referencia y sucursal.
func (a *Aggregator) Filter(views []OrderView, c Criteria) []OrderView {
	search := strings.ToLower(strings.TrimSpace(c.Search))
	ref := c.ReferenceDate.In(a.loc)
	start, end := c.Bucket.Start(ref), c.Bucket.End(ref)

	out := make([]OrderView, 0, len(views))
	for _, v := range views {
		if search != "" &&
			!strings.Contains(strings.ToLower(v.CustomerName), search) &&
			!strings.Contains(strings.ToLower(v.ID), search) {
			continue
		}
		d := v.Date.In(a.loc)
		if d.Before(start) || !d.Before(end) {
			continue
		}
		if c.BranchID != "" && v.BranchID != c.BranchID {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Aggregate agrupa por inicio del periodo y ordena cronológicamente. La etiqueta es
// solo para mostrar: "Jan 02" de dos años distintos son buckets separados.
func (a *Aggregator) Aggregate(views []OrderView, bucket Bucket) []PeriodSummary {
	byStart := make(map[int64]*PeriodSummary)
	for _, v := range views {
		d := v.Date.In(a.loc)
		start := bucket.Start(d)
		p, ok := byStart[start.Unix()]
		if !ok {
			p = &PeriodSummary{Label: bucket.Label(d), Start: start}
			byStart[start.Unix()] = p
		}
		p.TotalSales = p.TotalSales.Add(v.Total)
		p.TotalCost = p.TotalCost.Add(v.TotalCost)
		p.TotalProfit = p.TotalProfit.Add(v.TotalProfit)
		p.Orders++
		if v.HasNegativeProfit {
			p.OrdersWithNegativeProfit++
		}
	}

	out := make([]PeriodSummary, 0, len(byStart))
	for _, p := range byStart {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// Summarize totales y margen del conjunto.
func Summarize(views []OrderView) Summary {
	var s Summary
	for _, v := range views {
		s.TotalSales = s.TotalSales.Add(v.Total)
		s.TotalCost = s.TotalCost.Add(v.TotalCost)
		s.TotalProfit = s.TotalProfit.Add(v.TotalProfit)
		s.Orders++
	}
	s.ProfitMargin = sales.Margin(s.TotalProfit, s.TotalSales)
	return s
}
