// Package pdf genera el reporte de ventas en PDF con Maroto v2.
//
// Layout de la página A4 horizontal:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Reporte de ventas + sucursal │ Corte + fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Ventas | Costo | Utilidad | Margen | Órdenes       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SERIE: Periodo | Ventas | Costo | Utilidad | Órdenes        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ÓRDENES: Fecha | Cliente | Pago | Total | Utilidad | Margen │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/report"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorNegative = &props.Color{Red: 180, Green: 30, Blue: 30}
)

var bucketTitles = map[string]string{
	"daily":   "Diario",
	"monthly": "Mensual",
	"yearly":  "Anual",
}

// ── Exporter ──────────────────────────────────────────────────────────────────

var _ report.Exporter = (*SalesReportPDF)(nil)

// SalesReportPDF implementa report.Exporter en PDF.
type SalesReportPDF struct{}

// NewSalesReportPDF construye el exportador.
func NewSalesReportPDF() *SalesReportPDF { return &SalesReportPDF{} }

// ContentType tipo MIME del archivo.
func (SalesReportPDF) ContentType() string { return "application/pdf" }

// Extension extensión del archivo sin punto.
func (SalesReportPDF) Extension() string { return "pdf" }

// Export genera el PDF y devuelve sus bytes.
func (SalesReportPDF) Export(r *dto.SalesReportResponse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de ventas", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(r.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("Serie por periodo"))
	m.AddRows(tableHeader([]string{"Periodo", "Ventas", "Costo", "Utilidad", "Órdenes", "Con pérdida"}, []int{2, 2, 2, 2, 2, 2}))
	for _, p := range r.Series {
		m.AddRows(row.New(6).Add(
			cell(p.Label, 2, align.Left, nil),
			cell("$"+p.TotalSales, 2, align.Right, nil),
			cell("$"+p.TotalCost, 2, align.Right, nil),
			cell("$"+p.TotalProfit, 2, align.Right, nil),
			cell(fmt.Sprint(p.Orders), 2, align.Center, nil),
			cell(fmt.Sprint(p.OrdersWithNegativeProfit), 2, align.Center, nil),
		))
	}

	m.AddRows(line.NewRow(4))
	m.AddRows(sectionTitle("Órdenes"))
	m.AddRows(tableHeader([]string{"Fecha", "Cliente", "Pago", "Total", "Costo", "Utilidad", "Margen"}, []int{2, 3, 1, 2, 1, 2, 1}))
	for _, o := range r.Orders {
		var c *props.Color
		if o.HasNegativeProfit {
			c = colorNegative
		}
		m.AddRows(row.New(6).Add(
			cell(o.Date.Format("2006-01-02 15:04"), 2, align.Left, c),
			cell(o.CustomerName, 3, align.Left, c),
			cell(o.PaymentMethod, 1, align.Center, c),
			cell("$"+o.Total, 2, align.Right, c),
			cell("$"+o.TotalCost, 1, align.Right, c),
			cell("$"+o.TotalProfit, 2, align.Right, c),
			cell(o.ProfitMargin+"%", 1, align.Right, c),
		))
	}
	if len(r.Orders) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("No hay ventas para los filtros seleccionados.", props.Text{Size: 9, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(r *dto.SalesReportResponse) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("REPORTE DE VENTAS", props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Sucursal: "+nonEmpty(r.BranchID, "todas"), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Corte "+nonEmpty(bucketTitles[r.Bucket], r.Bucket), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1}),
			text.New("Referencia: "+r.ReferenceDate, props.Text{Size: 8, Align: align.Right, Top: 9, Color: colorGray}),
		),
	)
}

func summaryRow(s dto.ReportSummaryResponse) core.Row {
	box := func(label, value string) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		col.New(1),
		box("Ventas", "$"+s.TotalSales),
		box("Costo", "$"+s.TotalCost),
		box("Utilidad", "$"+s.TotalProfit),
		box("Margen", s.ProfitMargin+"%"),
		box("Órdenes", fmt.Sprint(s.Orders)),
		col.New(1),
	)
}

func sectionTitle(s string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1}),
	))
}

func tableHeader(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		cols = append(cols, col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: colorPrimary, Top: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

func cell(s string, size int, a align.Type, c *props.Color) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1, Color: c}))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
