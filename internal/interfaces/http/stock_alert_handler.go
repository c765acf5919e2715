package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/branch-pos-api/internal/application/lowstock"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

// StockAlertHandler lista de productos en stock bajo.
type StockAlertHandler struct {
	monitor *lowstock.Monitor
	errorWriter
}

// NewStockAlertHandler construye el handler.
func NewStockAlertHandler(monitor *lowstock.Monitor, log *logger.Logger) *StockAlertHandler {
	return &StockAlertHandler{monitor: monitor, errorWriter: newErrorWriter(log)}
}

// List godoc
// @Summary      Productos en stock bajo
// @Description  Lista publicada por el monitor (stock menor al umbral), ordenada por stock y nombre.
// @Tags         stock-alerts
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal"
// @Success      200  {object}  dto.StockAlertListResponse
// @Router       /api/stock-alerts [get]
func (h *StockAlertHandler) List(c *fiber.Ctx) error {
	out, err := h.monitor.List(c.Context(), GetSession(c), c.Query("branch_id"))
	if err != nil {
		return h.write(c, err, "")
	}
	return c.JSON(out)
}
