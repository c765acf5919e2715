package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/sales"
)

const dateLayout = "2006-01-02"

// Exporter genera un archivo a partir del reporte ya armado.
type Exporter interface {
	ContentType() string
	Extension() string
	Export(r *dto.SalesReportResponse) ([]byte, error)
}

// File archivo exportado listo para descargar.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Service caso de uso del reporte de ventas.
type Service struct {
	agg       *Aggregator
	exporters map[string]Exporter
	now       func() time.Time
}

// NewService construye el servicio. Los exporters se indexan por formato ("pdf", "xlsx").
func NewService(agg *Aggregator, exporters map[string]Exporter) *Service {
	if exporters == nil {
		exporters = map[string]Exporter{}
	}
	return &Service{agg: agg, exporters: exporters, now: time.Now}
}

// Report carga, filtra y agrega las órdenes según la consulta.
func (s *Service) Report(ctx context.Context, sess *identity.Session, q dto.SalesReportQuery) (*dto.SalesReportResponse, error) {
	bucket, ok := ParseBucket(q.Bucket)
	if !ok {
		return nil, domain.NewValidationError("bucket", "bucket debe ser daily, monthly o yearly")
	}
	ref, err := s.referenceDate(q.Date)
	if err != nil {
		return nil, err
	}
	branchID := sess.ScopeBranch(q.BranchID)

	views, err := s.agg.Load(ctx, sess, branchID)
	if err != nil {
		return nil, err
	}
	filtered := s.agg.Filter(views, Criteria{
		Search:        q.Search,
		Bucket:        bucket,
		ReferenceDate: ref,
		BranchID:      branchID,
	})
	series := s.agg.Aggregate(filtered, bucket)

	out := &dto.SalesReportResponse{
		Bucket:        string(bucket),
		ReferenceDate: ref.Format(dateLayout),
		BranchID:      branchID,
		Orders:        make([]dto.ReportOrderResponse, 0, len(filtered)),
		Series:        make([]dto.PeriodSummaryResponse, 0, len(series)),
		Summary:       toSummaryResponse(Summarize(filtered)),
	}
	for _, v := range filtered {
		out.Orders = append(out.Orders, toOrderResponse(v))
	}
	for _, p := range series {
		out.Series = append(out.Series, dto.PeriodSummaryResponse{
			Label:                    p.Label,
			TotalSales:               sales.FormatMoney(p.TotalSales),
			TotalCost:                sales.FormatMoney(p.TotalCost),
			TotalProfit:              sales.FormatMoney(p.TotalProfit),
			Orders:                   p.Orders,
			OrdersWithNegativeProfit: p.OrdersWithNegativeProfit,
		})
	}
	return out, nil
}

// Export arma el reporte y lo serializa con el exporter del formato pedido.
func (s *Service) Export(ctx context.Context, sess *identity.Session, q dto.SalesReportQuery) (*File, error) {
	format := strings.ToLower(strings.TrimSpace(q.Format))
	if format == "" {
		format = "pdf"
	}
	exp, ok := s.exporters[format]
	if !ok {
		return nil, domain.NewValidationError("format", "formato de exportación no soportado")
	}
	r, err := s.Report(ctx, sess, q)
	if err != nil {
		return nil, err
	}
	data, err := exp.Export(r)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}
	return &File{
		Name:        fmt.Sprintf("ventas-%s-%s.%s", r.Bucket, r.ReferenceDate, exp.Extension()),
		ContentType: exp.ContentType(),
		Data:        data,
	}, nil
}

func (s *Service) referenceDate(raw string) (time.Time, error) {
	loc := s.agg.Location()
	if strings.TrimSpace(raw) == "" {
		return s.now().In(loc), nil
	}
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, domain.NewValidationError("date", "la fecha debe tener formato AAAA-MM-DD")
	}
	return t, nil
}

func toOrderResponse(v OrderView) dto.ReportOrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			Quantity:      it.Quantity,
			UnitSellPrice: sales.FormatMoney(it.UnitSellPrice),
			UnitCostPrice: sales.FormatMoney(it.UnitCostPrice),
			LineCost:      sales.FormatMoney(it.LineCost),
			LineProfit:    sales.FormatMoney(it.LineProfit),
		})
	}
	return dto.ReportOrderResponse{
		ID:                v.ID,
		CustomerName:      v.CustomerName,
		BranchID:          v.BranchID,
		PaymentMethod:     v.PaymentMethod,
		Date:              v.Date,
		Total:             sales.FormatMoney(v.Total),
		TotalCost:         sales.FormatMoney(v.TotalCost),
		TotalProfit:       sales.FormatMoney(v.TotalProfit),
		ProfitMargin:      sales.FormatPercent(v.ProfitMargin),
		HasNegativeProfit: v.HasNegativeProfit,
		Items:             items,
	}
}

func toSummaryResponse(s Summary) dto.ReportSummaryResponse {
	return dto.ReportSummaryResponse{
		TotalSales:   sales.FormatMoney(s.TotalSales),
		TotalCost:    sales.FormatMoney(s.TotalCost),
		TotalProfit:  sales.FormatMoney(s.TotalProfit),
		ProfitMargin: sales.FormatPercent(s.ProfitMargin),
		Orders:       s.Orders,
	}
}
