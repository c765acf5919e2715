package dto

import "time"

// LoginRequest entrada para login. Role es el rol elegido en la pantalla de ingreso.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// LoginResponse salida con el token de acceso.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      SessionResponse `json:"user"`
}

// SessionResponse usuario de la sesión actual.
type SessionResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	BranchID string `json:"branch_id"`
}

// PasswordResetRequest pide el envío del enlace de restablecimiento.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

// PasswordResetConfirmRequest fija la nueva contraseña con el token del enlace.
type PasswordResetConfirmRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// MessageResponse respuesta con un mensaje para mostrar.
type MessageResponse struct {
	Message string `json:"message"`
}
