// Package auth implementa inicio y cierre de sesión y el restablecimiento de contraseña.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
	"github.com/jhoicas/branch-pos-api/pkg/jwt"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

// EmailPattern formato aceptado para correos.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinPasswordLength largo mínimo de una contraseña nueva.
const MinPasswordLength = 6

// Config parámetros de emisión de tokens.
type Config struct {
	Secret          string
	Issuer          string
	ExpMinutes      int
	ResetExpMinutes int
	// PublicURL base del enlace de restablecimiento, p. ej. https://pos.example.com
	PublicURL string
}

// Service casos de uso de autenticación.
type Service struct {
	users    repository.UserRepository
	revoker  identity.TokenRevoker
	throttle Throttle
	mailer   Mailer
	cfg      Config
	log      *logger.Logger
}

// NewService construye el servicio. revoker, throttle y log pueden ser nil; mailer nil
// solo registra el enlace en el log.
func NewService(users repository.UserRepository, revoker identity.TokenRevoker, throttle Throttle, mailer Mailer, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.ResetExpMinutes <= 0 {
		cfg.ResetExpMinutes = 30
	}
	return &Service{users: users, revoker: revoker, throttle: throttle, mailer: mailer, cfg: cfg, log: log}
}

// NormalizeEmail recorta y pasa a minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PasswordStamp huella del hash vigente; cambia cada vez que cambia la contraseña.
func PasswordStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

// Login verifica credenciales y emite el token de acceso. role es el rol elegido en la
// pantalla de ingreso; vacío acepta el rol de la cuenta.
func (s *Service) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := NormalizeEmail(in.Email)
	role := strings.TrimSpace(in.Role)
	if !EmailPattern.MatchString(email) {
		return nil, domain.NewAuthError(domain.AuthInvalidEmail, role)
	}
	if s.throttle != nil {
		ok, err := s.throttle.Allowed(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("login throttle: %w", err)
		}
		if !ok {
			return nil, domain.NewAuthError(domain.AuthTooManyRequests, role)
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		s.fail(ctx, email)
		return nil, domain.NewAuthError(domain.AuthUserNotFound, role)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		s.fail(ctx, email)
		return nil, domain.NewAuthError(domain.AuthWrongPassword, role)
	}
	sess := identity.NewSession(user, "", time.Time{})
	if role != "" && role != sess.Role {
		return nil, domain.NewAuthError(domain.AuthRoleMismatch, role)
	}
	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("no se pudo reiniciar el contador de intentos")
		}
	}

	token, err := jwt.Generate(s.cfg.Secret, user.ID, user.BranchID, sess.Role, s.cfg.Issuer, s.cfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Str("role", sess.Role).Msg("inicio de sesión")
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.ExpMinutes) * time.Minute).UTC(),
		User:      ToSessionResponse(sess),
	}, nil
}

func (s *Service) fail(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Fail(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("no se pudo registrar el intento fallido")
	}
}

// Logout revoca el token de la sesión hasta su expiración.
func (s *Service) Logout(ctx context.Context, sess *identity.Session) error {
	if s.revoker == nil || sess.TokenID == "" {
		return nil
	}
	until := sess.ExpiresAt
	if until.IsZero() {
		until = time.Now().Add(time.Duration(s.cfg.ExpMinutes) * time.Minute)
	}
	if err := s.revoker.Revoke(ctx, sess.TokenID, until); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RequestPasswordReset envía el enlace de restablecimiento. Un correo sin cuenta no
// devuelve error para no revelar qué cuentas existen.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if !EmailPattern.MatchString(email) {
		return domain.NewAuthError(domain.AuthInvalidEmail, "")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		s.log.Info().Str("email", email).Msg("restablecimiento pedido para un correo sin cuenta")
		return nil
	}

	token, err := jwt.GenerateReset(s.cfg.Secret, user.ID, PasswordStamp(user.PasswordHash), s.cfg.Issuer, s.cfg.ResetExpMinutes)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	link := s.resetLink(token)
	if s.mailer == nil {
		s.log.Info().Str("email", email).Str("link", link).Msg("enlace de restablecimiento (sin SMTP)")
		return nil
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.DisplayName(), link); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

func (s *Service) resetLink(token string) string {
	base := strings.TrimRight(s.cfg.PublicURL, "/")
	return base + "/reset-password?token=" + url.QueryEscape(token)
}

// ResetPassword fija una contraseña nueva con el token del enlace. El token deja de servir
// en cuanto la contraseña cambia, así que es de un solo uso.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return domain.NewValidationError("password", fmt.Sprintf("la contraseña debe tener al menos %d caracteres", MinPasswordLength))
	}
	claims, err := jwt.ParseReset(s.cfg.Secret, token)
	if err != nil {
		return domain.NewAuthError(domain.AuthInvalidToken, "")
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil || PasswordStamp(user.PasswordHash) != claims.PasswordStamp {
		return domain.NewAuthError(domain.AuthInvalidToken, "")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewAuthError(domain.AuthInvalidToken, "")
		}
		return fmt.Errorf("update password: %w", err)
	}
	if s.throttle != nil {
		_ = s.throttle.Reset(ctx, NormalizeEmail(user.Email))
	}
	s.log.Info().Str("user_id", user.ID).Msg("contraseña restablecida")
	return nil
}

// ToSessionResponse mapea la sesión a su DTO.
func ToSessionResponse(sess *identity.Session) dto.SessionResponse {
	return dto.SessionResponse{
		ID:       sess.UserID,
		Email:    sess.Email,
		Name:     sess.Name,
		Role:     sess.Role,
		BranchID: sess.BranchID,
	}
}
