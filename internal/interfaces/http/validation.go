package http

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
)

var validate = newValidator()

// newValidator usa el nombre json de cada campo en los mensajes.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// bindJSON parsea el body en dest y lo valida. Si falla ya escribió la respuesta 400
// y devuelve ok=false; el handler solo debe retornar el error devuelto.
func bindJSON(c *fiber.Ctx, dest any) (bool, error) {
	if err := c.BodyParser(dest); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(dest); err != nil {
		return false, writeValidation(c, err)
	}
	return true, nil
}

// bindQuery parsea y valida los parámetros de la query.
func bindQuery(c *fiber.Ctx, dest any) (bool, error) {
	if err := c.QueryParser(dest); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := validate.Struct(dest); err != nil {
		return false, writeValidation(c, err)
	}
	return true, nil
}

func writeValidation(c *fiber.Ctx, err error) error {
	out := dto.ValidationErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range errs {
			out.Fields = append(out.Fields, dto.FieldError{Field: fe.Field(), Message: validationMessage(fe)})
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(out)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "min":
		return fmt.Sprintf("debe ser al menos %s", fe.Param())
	case "max":
		return fmt.Sprintf("debe ser como máximo %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", fe.Param())
	case "email":
		return "debe ser un correo válido"
	}
	return "no es válido"
}
