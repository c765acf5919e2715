package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/usecase"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

const branchNotFound = "sucursal no encontrada"

// BranchHandler maneja las peticiones HTTP de sucursales.
type BranchHandler struct {
	uc *usecase.BranchUseCase
	errorWriter
}

// NewBranchHandler construye el handler.
func NewBranchHandler(uc *usecase.BranchUseCase, log *logger.Logger) *BranchHandler {
	return &BranchHandler{uc: uc, errorWriter: newErrorWriter(log)}
}

// List godoc
// @Summary      Listar sucursales
// @Tags         branches
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.BranchResponse]
// @Router       /api/branches [get]
func (h *BranchHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return h.write(c, err, "")
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener sucursal
// @Tags         branches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sucursal"
// @Success      200  {object}  dto.BranchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/branches/{id} [get]
func (h *BranchHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), GetSession(c), c.Params("id"))
	if err != nil {
		return h.write(c, err, branchNotFound)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear sucursal
// @Tags         branches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBranchRequest  true  "Datos de la sucursal"
// @Success      201   {object}  dto.BranchResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/branches [post]
func (h *BranchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBranchRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.Context(), GetSession(c), in)
	if err != nil {
		return h.write(c, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar sucursal
// @Tags         branches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la sucursal"
// @Param        body  body  dto.UpdateBranchRequest  true  "Datos de la sucursal"
// @Success      200   {object}  dto.BranchResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/branches/{id} [put]
func (h *BranchHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateBranchRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.Context(), GetSession(c), c.Params("id"), in)
	if err != nil {
		return h.write(c, err, branchNotFound)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar sucursal
// @Tags         branches
// @Security     Bearer
// @Param        id   path  string  true  "ID de la sucursal"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/branches/{id} [delete]
func (h *BranchHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetSession(c), c.Params("id")); err != nil {
		return h.write(c, err, branchNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
