// Package cli comandos de administración de posctl: migraciones, carga de catálogo y alta de admin.
package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/branch-pos-api/pkg/config"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

// RootOptions flags globales de todos los comandos.
type RootOptions struct {
	Verbose bool
	// DatabaseURL sobrescribe DATABASE_URL de la configuración.
	DatabaseURL string
}

// NewRootCommand construye el comando raíz de posctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "posctl",
		Short:         "Administración del punto de venta",
		Long:          "Herramientas de operación para la API de punto de venta: esquema, catálogo inicial y usuarios.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log detallado")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "connection string de PostgreSQL (por defecto DATABASE_URL)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedProductsCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))

	return cmd
}

// env carga configuración y logger según los flags globales.
func (o *RootOptions) env(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	if o.DatabaseURL != "" {
		cfg.DB.DatabaseURL = o.DatabaseURL
	}
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level, Service: "posctl", Output: cmd.ErrOrStderr()})
	return cfg, log, nil
}

// openPool abre el pool; el llamador lo cierra.
func (o *RootOptions) openPool(ctx context.Context, cmd *cobra.Command) (*pgxpool.Pool, *logger.Logger, error) {
	cfg, log, err := o.env(cmd)
	if err != nil {
		return nil, nil, err
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return pool, log, nil
}

// systemSession sesión de administrador sin sucursal para las operaciones de consola.
func systemSession() *identity.Session {
	return &identity.Session{UserID: "posctl", Name: "posctl", Role: entity.RoleAdmin}
}
