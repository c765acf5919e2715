// Package migrations aplica el esquema con goose desde archivos SQL embebidos.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

// Dir directorio de las migraciones dentro del FS embebido.
const Dir = "sql"

//go:embed sql/*.sql
var files embed.FS

var setupOnce sync.Once

func setup() error {
	var err error
	setupOnce.Do(func() {
		goose.SetBaseFS(files)
		err = goose.SetDialect("postgres")
	})
	return err
}

// Run ejecuta un comando de goose (up, down, status, version, redo, reset, up-to, down-to).
func Run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if err := setup(); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, Dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// RunWithPool abre un *sql.DB sobre el pool de pgx, ejecuta el comando y lo cierra.
func RunWithPool(ctx context.Context, pool *pgxpool.Pool, command string, args ...string) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return Run(ctx, db, command, args...)
}

// AutoRun aplica "up" al arrancar la API cuando está habilitado.
func AutoRun(ctx context.Context, enabled bool, pool *pgxpool.Pool, log *logger.Logger) error {
	if !enabled {
		return nil
	}
	log.Info().Str("dir", Dir).Msg("aplicando migraciones")
	if err := RunWithPool(ctx, pool, "up"); err != nil {
		return err
	}
	log.Info().Msg("migraciones aplicadas")
	return nil
}

// Files lista los archivos de migración embebidos.
func Files() ([]string, error) {
	entries, err := files.ReadDir(Dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out, nil
}
