// Package xlsx exporta el reporte de ventas a una hoja de cálculo con excelize.
package xlsx

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/report"
)

const (
	SheetOrders  = "Ordenes"
	SheetSeries  = "Serie"
	SheetSummary = "Resumen"
)

var _ report.Exporter = (*SalesReportXLSX)(nil)

// SalesReportXLSX implementa report.Exporter con tres hojas: órdenes, serie y resumen.
type SalesReportXLSX struct{}

// NewSalesReportXLSX construye el exportador.
func NewSalesReportXLSX() *SalesReportXLSX { return &SalesReportXLSX{} }

// ContentType tipo MIME del archivo.
func (SalesReportXLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension extensión del archivo sin punto.
func (SalesReportXLSX) Extension() string { return "xlsx" }

// Export arma el libro y devuelve sus bytes.
func (SalesReportXLSX) Export(r *dto.SalesReportResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetOrders); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	for _, s := range []string{SheetSeries, SheetSummary} {
		if _, err := f.NewSheet(s); err != nil {
			return nil, fmt.Errorf("xlsx: crear hoja %s: %w", s, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	red, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "B41E1E"}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	w := &sheetWriter{f: f}
	w.row(SheetOrders, 1, []any{"ID", "Fecha", "Cliente", "Sucursal", "Pago", "Total", "Costo", "Utilidad", "Margen %"})
	w.style(SheetOrders, 1, 9, bold)
	for i, o := range r.Orders {
		n := i + 2
		w.row(SheetOrders, n, []any{
			o.ID, o.Date.Format("2006-01-02 15:04"), o.CustomerName, o.BranchID, o.PaymentMethod,
			num(o.Total), num(o.TotalCost), num(o.TotalProfit), num(o.ProfitMargin),
		})
		if o.HasNegativeProfit {
			w.style(SheetOrders, n, 9, red)
		}
	}

	w.row(SheetSeries, 1, []any{"Periodo", "Ventas", "Costo", "Utilidad", "Órdenes", "Con pérdida"})
	w.style(SheetSeries, 1, 6, bold)
	for i, p := range r.Series {
		w.row(SheetSeries, i+2, []any{
			p.Label, num(p.TotalSales), num(p.TotalCost), num(p.TotalProfit), p.Orders, p.OrdersWithNegativeProfit,
		})
	}

	summary := [][]any{
		{"Corte", r.Bucket},
		{"Referencia", r.ReferenceDate},
		{"Sucursal", branchLabel(r.BranchID)},
		{"Ventas", num(r.Summary.TotalSales)},
		{"Costo", num(r.Summary.TotalCost)},
		{"Utilidad", num(r.Summary.TotalProfit)},
		{"Margen %", num(r.Summary.ProfitMargin)},
		{"Órdenes", r.Summary.Orders},
	}
	for i, kv := range summary {
		w.row(SheetSummary, i+1, kv)
		w.style(SheetSummary, i+1, 1, bold)
	}
	if w.err != nil {
		return nil, w.err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter acumula el primer error de excelize para no cortar el flujo en cada celda.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) row(sheet string, n int, values []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("xlsx: fila %d de %s: %w", n, sheet, err)
	}
}

func (w *sheetWriter) style(sheet string, n, cols, style int) {
	if w.err != nil {
		return
	}
	from, _ := excelize.CoordinatesToCellName(1, n)
	to, _ := excelize.CoordinatesToCellName(cols, n)
	if err := w.f.SetCellStyle(sheet, from, to, style); err != nil {
		w.err = fmt.Errorf("xlsx: estilo fila %d de %s: %w", n, sheet, err)
	}
}

// num convierte un importe formateado en número para que la hoja pueda sumarlo.
// Si no es numérico se deja el texto tal cual.
func num(s string) any {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.InexactFloat64()
}

func branchLabel(id string) string {
	if id == "" {
		return "todas"
	}
	return id
}
