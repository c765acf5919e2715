package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

// Mensaje genérico para fallos de infraestructura; el detalle queda solo en el log.
const internalMessage = "Operación fallida, intente de nuevo"

// errorWriter traduce errores de dominio a respuestas HTTP.
type errorWriter struct {
	log *logger.Logger
}

func newErrorWriter(log *logger.Logger) errorWriter {
	if log == nil {
		log = logger.Nop()
	}
	return errorWriter{log: log}
}

// write responde según el tipo de err. notFound es el mensaje del 404 para el recurso del handler.
func (w errorWriter) write(c *fiber.Ctx, err error, notFound string) error {
	var authErr *domain.AuthError
	var valErr *domain.ValidationError
	switch {
	case errors.As(err, &authErr):
		status := fiber.StatusUnauthorized
		if authErr.Code == domain.AuthTooManyRequests {
			status = fiber.StatusTooManyRequests
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: string(authErr.Code), Message: authErr.Message()})
	case errors.As(err, &valErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
			Code:    "VALIDATION",
			Message: valErr.Message,
			Fields:  []dto.FieldError{{Field: valErr.Field, Message: valErr.Message}},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "ya existe un registro con ese nombre"})
	case errors.Is(err, domain.ErrOutOfStock), errors.Is(err, domain.ErrStockLimit):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "STOCK_WARNING", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "el stock cambió, revise las cantidades del carrito"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el carrito está procesando otra operación"})
	case errors.Is(err, domain.ErrNotFound):
		if notFound == "" {
			notFound = "recurso no encontrado"
		}
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: notFound})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "no tiene permisos para esta operación"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión inválida o expirada"})
	}
	w.log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("user_id", userIDOf(c)).
		Msg("error no controlado en handler")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: internalMessage})
}

// ErrorHandler manejador de errores de la app: rutas inexistentes, body demasiado grande y panics recuperados.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	w := newErrorWriter(log)
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := "HTTP_ERROR"
			switch fe.Code {
			case fiber.StatusNotFound:
				code = "NOT_FOUND"
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			case fiber.StatusRequestEntityTooLarge:
				code = "BODY_TOO_LARGE"
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
		}
		return w.write(c, err, "")
	}
}
