package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/branch-pos-api/internal/infrastructure/migrations"
)

// MigrateCommands subcomandos de goose expuestos por posctl.
var MigrateCommands = []string{"up", "down", "status", "version", "redo", "reset"}

// NewMigrateCommand crea el comando migrate.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status|version|redo|reset]",
		Short:     "Aplica o inspecciona las migraciones del esquema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), validMigrateArg),
		ValidArgs: MigrateCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}
			pool, log, err := rootOpts.openPool(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			log.Debug().Str("command", command).Msg("ejecutando migraciones")
			if err := migrations.RunWithPool(cmd.Context(), pool, command); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: ok\n", command)
			return nil
		},
	}
	return cmd
}

func validMigrateArg(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	for _, c := range MigrateCommands {
		if c == args[0] {
			return nil
		}
	}
	return fmt.Errorf("comando de migración inválido %q: debe ser uno de %v", args[0], MigrateCommands)
}
