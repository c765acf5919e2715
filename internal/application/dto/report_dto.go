package dto

import "time"

// SalesReportQuery parámetros del reporte de ventas.
type SalesReportQuery struct {
	BranchID string `query:"branch_id"`
	Search   string `query:"search"`
	Bucket   string `query:"bucket" validate:"omitempty,oneof=daily monthly yearly"`
	Date     string `query:"date"`   // referencia YYYY-MM-DD; vacío = hoy
	Format   string `query:"format"` // solo export: pdf | xlsx
}

// ReportOrderResponse orden tal como se muestra en el reporte.
type ReportOrderResponse struct {
	ID                string              `json:"id"`
	CustomerName      string              `json:"customer_name"`
	BranchID          string              `json:"branch_id"`
	PaymentMethod     string              `json:"payment_method"`
	Date              time.Time           `json:"date"`
	Total             string              `json:"total"`
	TotalCost         string              `json:"total_cost"`
	TotalProfit       string              `json:"total_profit"`
	ProfitMargin      string              `json:"profit_margin"`
	HasNegativeProfit bool                `json:"has_negative_profit"`
	Items             []OrderItemResponse `json:"items"`
}

// PeriodSummaryResponse punto de la serie agregada.
type PeriodSummaryResponse struct {
	Label                    string `json:"label"`
	TotalSales               string `json:"total_sales"`
	TotalCost                string `json:"total_cost"`
	TotalProfit              string `json:"total_profit"`
	Orders                   int    `json:"orders"`
	OrdersWithNegativeProfit int    `json:"orders_with_negative_profit"`
}

// ReportSummaryResponse totales del conjunto filtrado.
type ReportSummaryResponse struct {
	TotalSales   string `json:"total_sales"`
	TotalCost    string `json:"total_cost"`
	TotalProfit  string `json:"total_profit"`
	ProfitMargin string `json:"profit_margin"`
	Orders       int    `json:"orders"`
}

// SalesReportResponse reporte completo: órdenes, serie y totales.
type SalesReportResponse struct {
	Bucket        string                  `json:"bucket"`
	ReferenceDate string                  `json:"reference_date"`
	BranchID      string                  `json:"branch_id,omitempty"`
	Orders        []ReportOrderResponse   `json:"orders"`
	Series        []PeriodSummaryResponse `json:"series"`
	Summary       ReportSummaryResponse   `json:"summary"`
}
