package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/branch-pos-api/internal/application/usecase"
	"github.com/jhoicas/branch-pos-api/internal/cli"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/memtest"
)

// ──────────────────────────────────────────────────────────────────────────────
// CSV
// ──────────────────────────────────────────────────────────────────────────────

func TestParseProductsCSV_ConCabeceraYLatin1(t *testing.T) {
	raw := "nombre,cost_price,sell_price,stock\n" +
		"caf\xe9 molido, 10.50, 15, 4\n" +
		"az\xfacar,2,3,0\n"

	rows, err := cli.ParseProductsCSV(strings.NewReader(raw), true)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "café molido", rows[0].Name)
	assert.Equal(t, "10.5", rows[0].CostPrice.String())
	assert.Equal(t, 4, rows[0].Stock)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "azúcar", rows[1].Name)
}

func TestParseProductsCSV_SinCabecera(t *testing.T) {
	rows, err := cli.ParseProductsCSV(strings.NewReader("pan,1,2,10\n"), false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Line)
}

func TestParseProductsCSV_ValoresInvalidos(t *testing.T) {
	_, err := cli.ParseProductsCSV(strings.NewReader("pan,1,2,muchos\n"), false)
	assert.ErrorContains(t, err, "línea 1: stock inválido")

	_, err = cli.ParseProductsCSV(strings.NewReader("pan,uno,2,1\n"), false)
	assert.ErrorContains(t, err, "cost_price inválido")

	_, err = cli.ParseProductsCSV(strings.NewReader("pan,1,2\n"), false)
	assert.Error(t, err, "faltan columnas")
}

// ──────────────────────────────────────────────────────────────────────────────
// Carga de catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestSeedProducts_OmiteDuplicadosEInvalidos(t *testing.T) {
	db := memtest.NewStore()
	uc := usecase.NewProductUseCase(db.Products())
	rows, err := cli.ParseProductsCSV(strings.NewReader(
		"Pan,1,2,10\n"+
			"PAN,1,2,3\n"+
			"Leche,5,5,1\n"+
			"Queso,4,9,2\n"), false)
	require.NoError(t, err)

	var warn bytes.Buffer
	res, err := cli.SeedProducts(context.Background(), uc, "branch-a", rows, &warn)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 2, res.Skipped)
	assert.Contains(t, warn.String(), "línea 2")
	assert.Contains(t, warn.String(), "línea 3: sell_price")

	list, err := db.Products().List(context.Background(), "branch-a")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Admin y migraciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateAdmin_CreaConRolAdmin(t *testing.T) {
	db := memtest.NewStore()
	uc := usecase.NewUserUseCase(db.Users()).WithBcryptCost(bcrypt.MinCost)

	u, err := cli.CreateAdmin(context.Background(), uc, cli.AdminInput{
		Email: "Root@POS.test", Password: "secreto123", Name: "Root", BranchID: "main",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)

	stored, err := db.Users().GetByEmail(context.Background(), "root@pos.test")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreto123")))

	_, err = cli.CreateAdmin(context.Background(), uc, cli.AdminInput{
		Email: "root@pos.test", Password: "otra123", Name: "Root", BranchID: "main",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestMigrate_RechazaComandoDesconocido(t *testing.T) {
	cmd := cli.NewRootCommand()
	cmd.SetArgs([]string{"migrate", "sideways"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "comando de migración inválido")
}

func TestSeedProducts_FlagsObligatorios(t *testing.T) {
	cmd := cli.NewRootCommand()
	cmd.SetArgs([]string{"seed-products", "--file", "x.csv"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "branch")
}
