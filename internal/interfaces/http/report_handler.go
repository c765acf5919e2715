package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/report"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

// ReportHandler reporte de ventas y su exportación.
type ReportHandler struct {
	svc *report.Service
	errorWriter
}

// NewReportHandler construye el handler.
func NewReportHandler(svc *report.Service, log *logger.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, errorWriter: newErrorWriter(log)}
}

// Sales godoc
// @Summary      Reporte de ventas
// @Description  Órdenes del periodo que contiene date, agregadas por día, mes o año.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal (solo admin)"
// @Param        search     query  string  false  "Cliente o ID de orden"
// @Param        bucket     query  string  false  "daily | monthly | yearly"  default(daily)
// @Param        date       query  string  false  "Fecha de referencia YYYY-MM-DD"
// @Success      200  {object}  dto.SalesReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales [get]
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	var q dto.SalesReportQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.svc.Report(c.Context(), GetSession(c), q)
	if err != nil {
		return h.write(c, err, "")
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar reporte de ventas
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        branch_id  query  string  false  "Sucursal (solo admin)"
// @Param        search     query  string  false  "Cliente o ID de orden"
// @Param        bucket     query  string  false  "daily | monthly | yearly"  default(daily)
// @Param        date       query  string  false  "Fecha de referencia YYYY-MM-DD"
// @Param        format     query  string  false  "pdf | xlsx"  default(pdf)
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales/export [get]
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	var q dto.SalesReportQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	file, err := h.svc.Export(c.Context(), GetSession(c), q)
	if err != nil {
		return h.write(c, err, "")
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Send(file.Data)
}
