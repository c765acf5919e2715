package xlsx_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/xlsx"
)

func TestSalesReportXLSX_HojasYValores(t *testing.T) {
	r := &dto.SalesReportResponse{
		Bucket:        "monthly",
		ReferenceDate: "2026-03-10",
		BranchID:      "branch-a",
		Orders: []dto.ReportOrderResponse{
			{ID: "o-1", CustomerName: "Jane", BranchID: "branch-a", PaymentMethod: "Cash",
				Date:  time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
				Total: "45.00", TotalCost: "30.00", TotalProfit: "15.00", ProfitMargin: "33.3"},
			{ID: "o-2", CustomerName: "Walk-in Customer", BranchID: "branch-a", PaymentMethod: "Card",
				Date:  time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC),
				Total: "8.00", TotalCost: "10.00", TotalProfit: "-2.00", ProfitMargin: "-25.0", HasNegativeProfit: true},
		},
		Series:  []dto.PeriodSummaryResponse{{Label: "Mar 2026", TotalSales: "53.00", TotalCost: "40.00", TotalProfit: "13.00", Orders: 2, OrdersWithNegativeProfit: 1}},
		Summary: dto.ReportSummaryResponse{TotalSales: "53.00", TotalCost: "40.00", TotalProfit: "13.00", ProfitMargin: "24.5", Orders: 2},
	}
	exp := xlsx.NewSalesReportXLSX()
	assert.Equal(t, "xlsx", exp.Extension())

	data, err := exp.Export(r)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{xlsx.SheetOrders, xlsx.SheetSeries, xlsx.SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(xlsx.SheetOrders)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Cliente", rows[0][2])
	assert.Equal(t, "Jane", rows[1][2])
	assert.Equal(t, "45", rows[1][5])
	assert.Equal(t, "-2", rows[2][7])

	series, err := f.GetRows(xlsx.SheetSeries)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "Mar 2026", series[1][0])

	v, err := f.GetCellValue(xlsx.SheetSummary, "B3")
	require.NoError(t, err)
	assert.Equal(t, "branch-a", v)
}
