package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/usecase"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/memtest"
)

func newUserUC(db *memtest.Store) *usecase.UserUseCase {
	return usecase.NewUserUseCase(db.Users()).WithBcryptCost(bcrypt.MinCost)
}

func userReq(email string) dto.CreateUserRequest {
	return dto.CreateUserRequest{Name: "Jane", LastName: "Doe", Email: email, Phone: "3001234567", Password: "secreto1", BranchID: "b-1"}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestUserCreate_HasheaYRolPorDefecto(t *testing.T) {
	db := memtest.NewStore()
	uc := newUserUC(db)
	ctx := context.Background()

	out, err := uc.Create(ctx, admin, userReq(" Jane@POS.co "))
	require.NoError(t, err)
	assert.Equal(t, "jane@pos.co", out.Email)
	assert.Equal(t, entity.RoleUser, out.Role)

	stored, err := db.Users().GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secreto1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreto1")))
}

func TestUserCreate_Validaciones(t *testing.T) {
	uc := newUserUC(memtest.NewStore())
	ctx := context.Background()

	mutate := func(fn func(*dto.CreateUserRequest)) dto.CreateUserRequest {
		in := userReq("jane@pos.co")
		fn(&in)
		return in
	}
	cases := map[string]dto.CreateUserRequest{
		"email mal formado": mutate(func(r *dto.CreateUserRequest) { r.Email = "jane@pos" }),
		"sin nombre":        mutate(func(r *dto.CreateUserRequest) { r.Name = " " }),
		"teléfono corto":    mutate(func(r *dto.CreateUserRequest) { r.Phone = "12345" }),
		"teléfono letras":   mutate(func(r *dto.CreateUserRequest) { r.Phone = "300123456a" }),
		"sin sucursal":      mutate(func(r *dto.CreateUserRequest) { r.BranchID = "" }),
		"clave corta":       mutate(func(r *dto.CreateUserRequest) { r.Password = "123" }),
		"rol desconocido":   mutate(func(r *dto.CreateUserRequest) { r.Role = "root" }),
	}
	for name, in := range cases {
		_, err := uc.Create(ctx, admin, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}

	_, err := uc.Create(ctx, admin, mutate(func(r *dto.CreateUserRequest) { r.Phone = "" }))
	assert.NoError(t, err, "el teléfono es opcional")
}

func TestUserCreate_EmailDuplicado(t *testing.T) {
	uc := newUserUC(memtest.NewStore())
	ctx := context.Background()

	_, err := uc.Create(ctx, admin, userReq("jane@pos.co"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, admin, userReq("JANE@pos.co"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUser_SoloAdmin(t *testing.T) {
	uc := newUserUC(memtest.NewStore())
	ctx := context.Background()

	_, err := uc.Create(ctx, cashier, userReq("x@pos.co"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.List(ctx, cashier, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, uc.Delete(ctx, cashier, "u"), domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestUserUpdate_SobrescribeYCambiaClave(t *testing.T) {
	db := memtest.NewStore()
	uc := newUserUC(db)
	ctx := context.Background()
	created, err := uc.Create(ctx, admin, userReq("jane@pos.co"))
	require.NoError(t, err)
	before, _ := db.Users().GetByID(ctx, created.ID)

	out, err := uc.Update(ctx, admin, created.ID, dto.UpdateUserRequest{
		Name: "Janet", Email: "janet@pos.co", Role: entity.RoleAdmin, BranchID: "b-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", out.Name)
	assert.Equal(t, entity.RoleAdmin, out.Role)
	assert.Equal(t, "b-2", out.BranchID)
	assert.Empty(t, out.Phone, "sobrescritura completa")
	same, _ := db.Users().GetByID(ctx, created.ID)
	assert.Equal(t, before.PasswordHash, same.PasswordHash, "sin password se conserva el hash")

	_, err = uc.Update(ctx, admin, created.ID, dto.UpdateUserRequest{
		Name: "Janet", Email: "janet@pos.co", Role: entity.RoleAdmin, BranchID: "b-2", Password: "x",
	})
	require.NoError(t, err, "no se revalida el largo de la clave")
	after, _ := db.Users().GetByID(ctx, created.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(after.PasswordHash), []byte("x")))
}

func TestUserDelete_Incondicional(t *testing.T) {
	db := memtest.NewStore()
	uc := newUserUC(db)
	ctx := context.Background()
	created, err := uc.Create(ctx, admin, userReq("jane@pos.co"))
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, admin, created.ID))
	_, err = uc.GetByID(ctx, admin, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(ctx, admin, "")
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
}
