package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/branch-pos-api/internal/application/auth"
	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/navigation"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

// AuthHandler maneja login, logout, restablecimiento de contraseña y la sesión actual.
type AuthHandler struct {
	svc *auth.Service
	errorWriter
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(svc *auth.Service, log *logger.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, errorWriter: newErrorWriter(log)}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password y rol elegido"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.Login(c.Context(), in)
	if err != nil {
		return h.write(c, err, "")
	}
	return c.JSON(out)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Description  Revoca el token actual hasta su expiración.
// @Tags         auth
// @Security     Bearer
// @Success      204
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.svc.Logout(c.Context(), GetSession(c)); err != nil {
		return h.write(c, err, "")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RequestPasswordReset godoc
// @Summary      Pedir enlace de restablecimiento
// @Description  Responde igual exista o no la cuenta.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PasswordResetRequest  true  "email"
// @Success      202   {object}  dto.MessageResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var in dto.PasswordResetRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	if err := h.svc.RequestPasswordReset(c.Context(), in.Email); err != nil {
		return h.write(c, err, "")
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{
		Message: "Si el correo tiene una cuenta, recibirá un enlace para restablecer la contraseña.",
	})
}

// ConfirmPasswordReset godoc
// @Summary      Fijar nueva contraseña
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PasswordResetConfirmRequest  true  "token del enlace y nueva contraseña"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var in dto.PasswordResetConfirmRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	if err := h.svc.ResetPassword(c.Context(), in.Token, in.Password); err != nil {
		return h.write(c, err, "")
	}
	return c.JSON(dto.MessageResponse{Message: "Contraseña actualizada. Ya puede iniciar sesión."})
}

// Me godoc
// @Summary      Sesión actual
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(auth.ToSessionResponse(GetSession(c)))
}

// Menu godoc
// @Summary      Secciones visibles para el rol
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MenuItemResponse
// @Router       /api/me/menu [get]
func (h *AuthHandler) Menu(c *fiber.Ctx) error {
	return c.JSON(navigation.Menu(GetSession(c)))
}
