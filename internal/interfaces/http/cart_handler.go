package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/branch-pos-api/internal/application/checkout"
	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

const lineNotFound = "el producto no está en el carrito"

// CartHandler carrito de la sesión y checkout.
type CartHandler struct {
	engine *checkout.Engine
	errorWriter
}

// NewCartHandler construye el handler.
func NewCartHandler(engine *checkout.Engine, log *logger.Logger) *CartHandler {
	return &CartHandler{engine: engine, errorWriter: newErrorWriter(log)}
}

// Get godoc
// @Summary      Carrito actual
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	out, err := h.engine.Cart(c.Context(), GetSession(c))
	if err != nil {
		return h.write(c, err, "")
	}
	return c.JSON(out)
}

// SelectBranch godoc
// @Summary      Elegir sucursal del carrito
// @Description  Cambiar de sucursal vacía el carrito. Solo un admin puede elegir otra sucursal.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SelectBranchRequest  true  "Sucursal"
// @Success      200   {object}  dto.CartResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/cart/branch [put]
func (h *CartHandler) SelectBranch(c *fiber.Ctx) error {
	var in dto.SelectBranchRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.engine.SelectBranch(c.Context(), GetSession(c), in.BranchID)
	if err != nil {
		return h.write(c, err, "")
	}
	return c.JSON(out)
}

// AddLine godoc
// @Summary      Agregar producto al carrito
// @Description  Agrega una unidad; si ya está, incrementa la cantidad hasta el stock disponible.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddCartLineRequest  true  "Producto"
// @Success      200   {object}  dto.CartResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/cart/lines [post]
func (h *CartHandler) AddLine(c *fiber.Ctx) error {
	var in dto.AddCartLineRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.engine.AddLine(c.Context(), GetSession(c), in.ProductID)
	if err != nil {
		return h.write(c, err, productNotFound)
	}
	return c.JSON(out)
}

// UpdateLine godoc
// @Summary      Cambiar cantidad o precio de una línea
// @Description  quantity menor a 1 quita la línea. sell_price bajo el costo deja el carrito sin poder cerrarse.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string                     true  "ID del producto"
// @Param        body       body  dto.UpdateCartLineRequest  true  "Cantidad y/o precio"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/cart/lines/{productId} [patch]
func (h *CartHandler) UpdateLine(c *fiber.Ctx) error {
	var in dto.UpdateCartLineRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	if in.Quantity == nil && in.SellPrice == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity o sell_price es requerido"})
	}
	sess, productID := GetSession(c), c.Params("productId")
	var (
		out *dto.CartResponse
		err error
	)
	if in.SellPrice != nil {
		if out, err = h.engine.OverridePrice(c.Context(), sess, productID, *in.SellPrice); err != nil {
			return h.write(c, err, lineNotFound)
		}
	}
	if in.Quantity != nil {
		if out, err = h.engine.SetQuantity(c.Context(), sess, productID, *in.Quantity); err != nil {
			return h.write(c, err, lineNotFound)
		}
	}
	return c.JSON(out)
}

// RemoveLine godoc
// @Summary      Quitar línea del carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.CartResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cart/lines/{productId} [delete]
func (h *CartHandler) RemoveLine(c *fiber.Ctx) error {
	out, err := h.engine.RemoveLine(c.Context(), GetSession(c), c.Params("productId"))
	if err != nil {
		return h.write(c, err, lineNotFound)
	}
	return c.JSON(out)
}

// Discard godoc
// @Summary      Descartar carrito
// @Tags         cart
// @Security     Bearer
// @Success      204
// @Router       /api/cart [delete]
func (h *CartHandler) Discard(c *fiber.Ctx) error {
	if err := h.engine.Discard(c.Context(), GetSession(c)); err != nil {
		return h.write(c, err, "")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Checkout godoc
// @Summary      Cerrar la venta
// @Description  Registra la orden y descuenta el stock en una sola transacción. Si falla, el carrito queda intacto.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "Cliente y medio de pago (Cash por defecto)"
// @Success      201   {object}  dto.CheckoutResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cart/checkout [post]
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.engine.Checkout(c.Context(), GetSession(c), in.CustomerName, in.PaymentMethod)
	if err != nil {
		return h.write(c, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
