package sales

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// MaxMoney límite exclusivo de las columnas NUMERIC(14,2).
var MaxMoney = decimal.New(1, 12)

// ValidMoney indica si d cabe en una columna de dinero: como mucho 2 decimales y
// |d| < MaxMoney. "10.50" y "10.500" son válidos; "10.001" no.
func ValidMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2)) && d.Abs().LessThan(MaxMoney)
}

// Line datos de una línea vendida necesarios para el cálculo.
type Line struct {
	Quantity      int
	UnitSellPrice decimal.Decimal
	UnitCostPrice decimal.Decimal
}

// LineAmounts importes de una línea.
type LineAmounts struct {
	Sales  decimal.Decimal
	Cost   decimal.Decimal
	Profit decimal.Decimal
}

// Totals agregados de una orden.
type Totals struct {
	Total        decimal.Decimal
	TotalCost    decimal.Decimal
	TotalProfit  decimal.Decimal
	ProfitMargin decimal.Decimal
}

// Amounts calcula venta, costo y utilidad de una línea (servicio de dominio).
func Amounts(l Line) LineAmounts {
	qty := decimal.NewFromInt(int64(l.Quantity))
	s := l.UnitSellPrice.Mul(qty)
	c := l.UnitCostPrice.Mul(qty)
	return LineAmounts{Sales: s, Cost: c, Profit: s.Sub(c)}
}

// Compute suma las líneas. Total = Σ venta×cantidad; TotalProfit = Total - TotalCost.
func Compute(lines []Line) Totals {
	total, cost := decimal.Zero, decimal.Zero
	for _, l := range lines {
		a := Amounts(l)
		total = total.Add(a.Sales)
		cost = cost.Add(a.Cost)
	}
	profit := total.Sub(cost)
	return Totals{
		Total:        total,
		TotalCost:    cost,
		TotalProfit:  profit,
		ProfitMargin: Margin(profit, total),
	}
}

// Margin = profit / total × 100 redondeado a 2 decimales; 0 cuando total es 0.
func Margin(profit, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return profit.Div(total).Mul(hundred).Round(2)
}

// FormatMoney formatea con exactamente 2 decimales, redondeo mitad lejos de cero.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatPercent formatea un porcentaje con 1 decimal.
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1)
}
