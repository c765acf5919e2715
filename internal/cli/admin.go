package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/application/usecase"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/postgres"
)

// UserCreator alta de usuarios con las mismas reglas que la API.
type UserCreator interface {
	Create(ctx context.Context, sess *identity.Session, in dto.CreateUserRequest) (*dto.UserResponse, error)
}

// AdminInput datos del administrador inicial.
type AdminInput struct {
	Email    string
	Password string
	Name     string
	BranchID string
}

// NewCreateAdminCommand crea el comando create-admin.
func NewCreateAdminCommand(rootOpts *RootOptions) *cobra.Command {
	in := &AdminInput{}
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Crea un usuario administrador",
		Long:  "Crea el primer administrador; no hace falta una sesión porque corre con acceso directo a la base.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, _, err := rootOpts.openPool(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			u, err := CreateAdmin(cmd.Context(), usecase.NewUserUseCase(postgres.NewUserRepository(pool)), *in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin creado: %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "correo de ingreso")
	cmd.Flags().StringVar(&in.Password, "password", "", "contraseña inicial")
	cmd.Flags().StringVar(&in.Name, "name", "Administrador", "nombre para mostrar")
	cmd.Flags().StringVar(&in.BranchID, "branch", "main", "sucursal asignada")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// CreateAdmin da de alta un usuario con rol admin.
func CreateAdmin(ctx context.Context, uc UserCreator, in AdminInput) (*dto.UserResponse, error) {
	return uc.Create(ctx, systemSession(), dto.CreateUserRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     entity.RoleAdmin,
		BranchID: in.BranchID,
	})
}
