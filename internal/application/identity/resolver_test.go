package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/memtest"
	pkgjwt "github.com/jhoicas/branch-pos-api/pkg/jwt"
)

const secret = "resolver-test-secret"

func seedUser(t *testing.T, db *memtest.Store, u entity.User) {
	t.Helper()
	require.NoError(t, db.Users().Create(context.Background(), &u))
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, userID, "b-1", "user", "test", 60)
	require.NoError(t, err)
	return tok
}

func TestResolve_UsuarioExistente(t *testing.T) {
	db := memtest.NewStore()
	seedUser(t, db, entity.User{ID: "u-1", Email: "jane@pos.co", Role: entity.RoleUser, BranchID: "b-1"})
	r := identity.NewResolver(db.Users(), nil, secret)

	sess, err := r.Resolve(context.Background(), token(t, "u-1"))
	require.NoError(t, err)
	assert.Equal(t, "u-1", sess.UserID)
	assert.Equal(t, "jane", sess.Name, "sin nombre se usa la parte local del email")
	assert.Equal(t, "b-1", sess.BranchID)
	assert.False(t, sess.IsAdmin())
	assert.NotEmpty(t, sess.TokenID)
}

func TestResolve_TokenValidoSinUsuarioEsNoAutenticado(t *testing.T) {
	db := memtest.NewStore()
	r := identity.NewResolver(db.Users(), nil, secret)

	sess, err := r.Resolve(context.Background(), token(t, "fantasma"))
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolve_RolTomadoDeLaBaseYNoDelToken(t *testing.T) {
	db := memtest.NewStore()
	seedUser(t, db, entity.User{ID: "u-1", Email: "a@pos.co", Role: entity.RoleAdmin})
	r := identity.NewResolver(db.Users(), nil, secret)

	sess, err := r.Resolve(context.Background(), token(t, "u-1"))
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin())
}

func TestResolve_TokenRevocado(t *testing.T) {
	ctx := context.Background()
	db := memtest.NewStore()
	seedUser(t, db, entity.User{ID: "u-1", Email: "a@pos.co", Role: entity.RoleUser})
	revoker := identity.NewMemoryRevoker()
	r := identity.NewResolver(db.Users(), revoker, secret)

	tok := token(t, "u-1")
	sess, err := r.Resolve(ctx, tok)
	require.NoError(t, err)

	require.NoError(t, revoker.Revoke(ctx, sess.TokenID, time.Now().Add(time.Hour)))
	_, err = r.Resolve(ctx, tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolve_TokenInvalido(t *testing.T) {
	r := identity.NewResolver(memtest.NewStore().Users(), nil, secret)
	_, err := r.Resolve(context.Background(), "no.es.jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSession_ScopeBranch(t *testing.T) {
	admin := &identity.Session{Role: entity.RoleAdmin, BranchID: "b-1"}
	user := &identity.Session{Role: entity.RoleUser, BranchID: "b-1"}

	assert.Equal(t, "", admin.ScopeBranch(""), "admin sin filtro ve todas")
	assert.Equal(t, "b-2", admin.ScopeBranch("b-2"))
	assert.Equal(t, "b-1", user.ScopeBranch("b-2"), "usuario siempre en su sucursal")
	assert.True(t, admin.CanAccessBranch("b-9"))
	assert.False(t, user.CanAccessBranch("b-9"))
	assert.False(t, (&identity.Session{Role: entity.RoleUser}).CanAccessBranch(""))
}
