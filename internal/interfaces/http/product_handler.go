package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/usecase"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

const productNotFound = "producto no encontrado"

// ProductHandler maneja las peticiones HTTP del catálogo (protegido).
type ProductHandler struct {
	uc *usecase.ProductUseCase
	errorWriter
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, log *logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, errorWriter: newErrorWriter(log)}
}

// Create godoc
// @Summary      Crear producto
// @Description  El precio de venta debe superar al de costo. Los nombres se normalizan en Title Case.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.Context(), GetSession(c), in)
	if err != nil {
		return h.write(c, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), GetSession(c), c.Params("id"))
	if err != nil {
		return h.write(c, err, productNotFound)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Description  Cajeros ven solo su sucursal; un admin puede filtrar por branch_id. search busca en nombre, id y precio.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal (solo admin)"
// @Param        search     query  string  false  "Texto a buscar"
// @Success      200  {object}  dto.ListResponse[dto.ProductResponse]
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var f dto.ProductFilter
	if ok, err := bindQuery(c, &f); !ok {
		return err
	}
	out, err := h.uc.List(c.Context(), GetSession(c), f)
	if err != nil {
		return h.write(c, err, "")
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.Context(), GetSession(c), c.Params("id"), in)
	if err != nil {
		return h.write(c, err, productNotFound)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetSession(c), c.Params("id")); err != nil {
		return h.write(c, err, productNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
