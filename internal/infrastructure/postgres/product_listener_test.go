package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/branch-pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Conexión del listener
// ──────────────────────────────────────────────────────────────────────────────

type fakePooledConn struct {
	execErr  error
	sql      []string
	released bool
	hijacked bool
}

func (c *fakePooledConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.sql = append(c.sql, sql)
	return pgconn.CommandTag{}, c.execErr
}

func (c *fakePooledConn) Release() { c.released = true }

func (c *fakePooledConn) Hijack() *pgx.Conn {
	c.hijacked = true
	return nil
}

func TestReleaseListenConn_CancelaSuscripcionesAntesDeDevolver(t *testing.T) {
	conn := &fakePooledConn{}

	postgres.ReleaseListenConn(conn, logger.Nop())

	assert.Equal(t, []string{"UNLISTEN *"}, conn.sql)
	assert.True(t, conn.released)
	assert.False(t, conn.hijacked)
}

func TestReleaseListenConn_SinUnlistenLaConexionNoVuelveAlPool(t *testing.T) {
	conn := &fakePooledConn{execErr: errors.New("conexión cerrada")}

	postgres.ReleaseListenConn(conn, logger.Nop())

	assert.False(t, conn.released, "una conexión que sigue en LISTEN no debe volver al pool")
	assert.True(t, conn.hijacked)
}
