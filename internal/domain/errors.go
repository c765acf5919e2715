package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOutOfStock        = errors.New("producto sin stock")
	ErrStockLimit        = errors.New("cantidad supera el stock disponible")
)

// StockLimitError envuelve ErrStockLimit con las unidades disponibles.
func StockLimitError(available int) error {
	return fmt.Errorf("%w: solo hay %d disponibles", ErrStockLimit, available)
}

// ValidationError describe un dato faltante o mal formado. errors.Is(err, ErrInvalidInput) es verdadero.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un ValidationError para el campo indicado.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is permite comparar contra ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// AuthCode causa conocida de un fallo de autenticación.
type AuthCode string

const (
	AuthUserNotFound      AuthCode = "user-not-found"
	AuthWrongPassword     AuthCode = "wrong-password"
	AuthInvalidEmail      AuthCode = "invalid-email"
	AuthTooManyRequests   AuthCode = "too-many-requests"
	AuthRoleMismatch      AuthCode = "role-mismatch"
	AuthInvalidToken      AuthCode = "invalid-token"
	AuthInvalidCredential AuthCode = "invalid-credential"
)

// AuthError fallo de autenticación con causa. errors.Is(err, ErrUnauthorized) es verdadero.
type AuthError struct {
	Code AuthCode
	Role string // rol solicitado en el login, para el mensaje
}

// NewAuthError construye un AuthError.
func NewAuthError(code AuthCode, role string) *AuthError {
	return &AuthError{Code: code, Role: role}
}

func (e *AuthError) Error() string {
	return string(e.Code)
}

// Is permite comparar contra ErrUnauthorized.
func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// Message devuelve el texto legible para el usuario según la causa.
func (e *AuthError) Message() string {
	switch e.Code {
	case AuthUserNotFound, AuthInvalidCredential:
		role := e.Role
		if role == "" {
			role = "usuario"
		}
		return fmt.Sprintf("No existe una cuenta de %s con este correo. Revise sus credenciales.", role)
	case AuthWrongPassword:
		return "Contraseña incorrecta. Intente de nuevo."
	case AuthInvalidEmail:
		return "El formato del correo no es válido."
	case AuthTooManyRequests:
		return "Demasiados intentos fallidos. Intente más tarde."
	case AuthRoleMismatch:
		if e.Role == "admin" {
			return "Acceso denegado. Se requieren privilegios de administrador."
		}
		return "Seleccione \"admin\" para ingresar como administrador."
	case AuthInvalidToken:
		return "El enlace no es válido o ya expiró."
	default:
		return "No se pudo iniciar sesión. Revise sus credenciales."
	}
}
