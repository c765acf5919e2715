package auth_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/branch-pos-api/internal/application/auth"
	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/memtest"
	"github.com/jhoicas/branch-pos-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const secret = "auth-test-secret"

type captureMailer struct {
	to, link string
	err      error
}

func (m *captureMailer) SendPasswordReset(_ context.Context, to, _ string, link string) error {
	m.to, m.link = to, link
	return m.err
}

type fixture struct {
	db      *memtest.Store
	svc     *auth.Service
	revoker *identity.MemoryRevoker
	mailer  *captureMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memtest.NewStore()
	f := &fixture{db: db, revoker: identity.NewMemoryRevoker(), mailer: &captureMailer{}}
	f.svc = auth.NewService(db.Users(), f.revoker, auth.NewMemoryThrottle(3, time.Minute), f.mailer, auth.Config{
		Secret:     secret,
		Issuer:     "test",
		ExpMinutes: 60,
		PublicURL:  "https://pos.test/",
	}, nil)
	return f
}

func (f *fixture) addUser(t *testing.T, id, email, password, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.db.Users().Create(context.Background(), &entity.User{
		ID: id, Email: email, Name: "Jane", Role: role, BranchID: "b-1", PasswordHash: string(hash),
	}))
}

func authCode(t *testing.T, err error) domain.AuthCode {
	t.Helper()
	var ae *domain.AuthError
	require.True(t, errors.As(err, &ae), "se esperaba AuthError, llegó %v", err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	return ae.Code
}

func login(f *fixture, email, password, role string) (*dto.LoginResponse, error) {
	return f.svc.Login(context.Background(), dto.LoginRequest{Email: email, Password: password, Role: role})
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_Exitoso(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@pos.co", "secreto1", entity.RoleUser)

	out, err := login(f, "  Jane@POS.co ", "secreto1", "")
	require.NoError(t, err)
	assert.Equal(t, "u-1", out.User.ID)
	assert.Equal(t, "b-1", out.User.BranchID)
	assert.True(t, out.ExpiresAt.After(time.Now()))

	claims, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, entity.RoleUser, claims.Role)
}

func TestLogin_CausasDeFallo(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@pos.co", "secreto1", entity.RoleUser)
	f.addUser(t, "a-1", "root@pos.co", "secreto1", entity.RoleAdmin)

	_, err := login(f, "jane-at-pos", "x", "")
	assert.Equal(t, domain.AuthInvalidEmail, authCode(t, err))

	_, err = login(f, "nadie@pos.co", "x", "")
	assert.Equal(t, domain.AuthUserNotFound, authCode(t, err))

	_, err = login(f, "jane@pos.co", "malo", "")
	assert.Equal(t, domain.AuthWrongPassword, authCode(t, err))

	_, err = login(f, "jane@pos.co", "secreto1", entity.RoleAdmin)
	assert.Equal(t, domain.AuthRoleMismatch, authCode(t, err))

	_, err = login(f, "root@pos.co", "secreto1", entity.RoleUser)
	assert.Equal(t, domain.AuthRoleMismatch, authCode(t, err))

	_, err = login(f, "root@pos.co", "secreto1", entity.RoleAdmin)
	assert.NoError(t, err)
}

func TestLogin_DemasiadosIntentos(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@pos.co", "secreto1", entity.RoleUser)

	for i := 0; i < 3; i++ {
		_, err := login(f, "jane@pos.co", "malo", "")
		require.Error(t, err)
	}
	_, err := login(f, "jane@pos.co", "secreto1", "")
	assert.Equal(t, domain.AuthTooManyRequests, authCode(t, err), "bloqueado aunque la clave sea correcta")
}

func TestLogin_ContadorSeReiniciaAlEntrar(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@pos.co", "secreto1", entity.RoleUser)

	for i := 0; i < 2; i++ {
		_, _ = login(f, "jane@pos.co", "malo", "")
	}
	_, err := login(f, "jane@pos.co", "secreto1", "")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, _ = login(f, "jane@pos.co", "malo", "")
	}
	_, err = login(f, "jane@pos.co", "secreto1", "")
	assert.NoError(t, err)
}

func TestAuthError_MensajesLegibles(t *testing.T) {
	assert.Equal(t, "Contraseña incorrecta. Intente de nuevo.", domain.NewAuthError(domain.AuthWrongPassword, "").Message())
	assert.Contains(t, domain.NewAuthError(domain.AuthUserNotFound, "admin").Message(), "admin")
	assert.Contains(t, domain.NewAuthError(domain.AuthRoleMismatch, "admin").Message(), "administrador")
	assert.Equal(t, "No se pudo iniciar sesión. Revise sus credenciales.", domain.NewAuthError("desconocido", "").Message())
}

// ──────────────────────────────────────────────────────────────────────────────
// Logout
// ──────────────────────────────────────────────────────────────────────────────

func TestLogout_RevocaElToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@pos.co", "secreto1", entity.RoleUser)
	resolver := identity.NewResolver(f.db.Users(), f.revoker, secret)

	out, err := login(f, "jane@pos.co", "secreto1", "")
	require.NoError(t, err)
	sess, err := resolver.Resolve(ctx, out.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, sess))
	_, err = resolver.Resolve(ctx, out.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ──────────────────────────────────────────────────────────────────────────────
// Restablecimiento de contraseña
// ──────────────────────────────────────────────────────────────────────────────

func resetToken(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/reset-password", u.Path)
	return u.Query().Get("token")
}

func TestResetPassword_FlujoCompletoYUnSoloUso(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@pos.co", "secreto1", entity.RoleUser)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "JANE@pos.co"))
	assert.Equal(t, "jane@pos.co", f.mailer.to)
	token := resetToken(t, f.mailer.link)

	require.NoError(t, f.svc.ResetPassword(ctx, token, "nueva-clave"))
	_, err := login(f, "jane@pos.co", "nueva-clave", "")
	require.NoError(t, err)
	_, err = login(f, "jane@pos.co", "secreto1", "")
	assert.Equal(t, domain.AuthWrongPassword, authCode(t, err))

	err = f.svc.ResetPassword(ctx, token, "otra-clave")
	assert.Equal(t, domain.AuthInvalidToken, authCode(t, err), "el token ya no sirve tras el cambio")
}

func TestResetPassword_Rechazos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@pos.co", "secreto1", entity.RoleUser)

	err := f.svc.ResetPassword(ctx, "x", "corta")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	access, err := jwt.Generate(secret, "u-1", "b-1", "user", "test", 10)
	require.NoError(t, err)
	err = f.svc.ResetPassword(ctx, access, "nueva-clave")
	assert.Equal(t, domain.AuthInvalidToken, authCode(t, err), "un token de acceso no sirve para restablecer")
}

func TestRequestPasswordReset_CorreoSinCuentaNoFalla(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "nadie@pos.co"))
	assert.Empty(t, f.mailer.link)

	err := f.svc.RequestPasswordReset(context.Background(), "no-es-correo")
	assert.Equal(t, domain.AuthInvalidEmail, authCode(t, err))
}

func TestRequestPasswordReset_ErrorDelMailer(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@pos.co", "secreto1", entity.RoleUser)
	f.mailer.err = errors.New("smtp caído")

	err := f.svc.RequestPasswordReset(context.Background(), "jane@pos.co")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}

func TestPasswordStamp_CambiaConElHash(t *testing.T) {
	assert.Equal(t, auth.PasswordStamp("a"), auth.PasswordStamp("a"))
	assert.NotEqual(t, auth.PasswordStamp("a"), auth.PasswordStamp("b"))
	assert.Len(t, auth.PasswordStamp("a"), 16)
}
