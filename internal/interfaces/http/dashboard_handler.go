package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/branch-pos-api/internal/application/usecase"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

// DashboardHandler conteos del panel principal.
type DashboardHandler struct {
	uc *usecase.DashboardUseCase
	errorWriter
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *usecase.DashboardUseCase, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, errorWriter: newErrorWriter(log)}
}

// Stats godoc
// @Summary      Conteos del panel
// @Description  Productos, productos en stock bajo, usuarios y órdenes. Un admin puede filtrar por sucursal.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal (solo admin)"
// @Success      200  {object}  dto.DashboardStatsResponse
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.Context(), GetSession(c), c.Query("branch_id"))
	if err != nil {
		return h.write(c, err, "")
	}
	return c.JSON(out)
}
