package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Propósitos de token: el de acceso autentica peticiones; el de reset solo cambia la contraseña.
const (
	PurposeAccess        = "access"
	PurposePasswordReset = "password_reset"
)

// ErrWrongPurpose se devuelve cuando un token válido se usa para algo distinto a lo emitido.
var ErrWrongPurpose = errors.New("jwt: propósito de token inválido")

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// Role y BranchID viajan en el token pero la sesión se resuelve siempre contra la tabla users.
type Claims struct {
	jwt.RegisteredClaims
	UserID        string `json:"user_id"`
	BranchID      string `json:"branch_id,omitempty"`
	Role          string `json:"role,omitempty"`   // "admin" | "user"
	Purpose       string `json:"purpose"`          // access | password_reset
	PasswordStamp string `json:"pws,omitempty"`    // huella del hash vigente (solo reset)
}

// TokenID devuelve el jti del token.
func (c *Claims) TokenID() string {
	return c.ID
}

// Expiry devuelve la expiración del token (cero si no tiene).
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Generate genera un token de acceso firmado que incluye userID, branchID y role.
func Generate(secret, userID, branchID, role, issuer string, expMinutes int) (string, error) {
	return sign(secret, Claims{
		RegisteredClaims: registered(userID, issuer, expMinutes),
		UserID:           userID,
		BranchID:         branchID,
		Role:             role,
		Purpose:          PurposeAccess,
	})
}

// GenerateReset genera un token de un solo uso para restablecer la contraseña.
// stamp debe cambiar cuando cambia la contraseña, lo que invalida enlaces previos.
func GenerateReset(secret, userID, stamp, issuer string, expMinutes int) (string, error) {
	return sign(secret, Claims{
		RegisteredClaims: registered(userID, issuer, expMinutes),
		UserID:           userID,
		Purpose:          PurposePasswordReset,
		PasswordStamp:    stamp,
	})
}

// Parse valida un token de acceso y devuelve sus claims.
// Retorna error si el token es inválido, expirado, tiene firma incorrecta o es de otro propósito.
func Parse(secret, tokenString string) (*Claims, error) {
	return parse(secret, tokenString, PurposeAccess)
}

// ParseReset valida un token de restablecimiento de contraseña.
func ParseReset(secret, tokenString string) (*Claims, error) {
	return parse(secret, tokenString, PurposePasswordReset)
}

func registered(userID, issuer string, expMinutes int) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
	}
}

func sign(secret string, claims Claims) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parse(secret, tokenString, purpose string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}
