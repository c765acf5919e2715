package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

// ProductsChannel canal NOTIFY que emite el trigger de la tabla products.
const ProductsChannel = "products_changed"

const unlistenTimeout = 2 * time.Second

// ProductListener escucha NOTIFY products_changed con una conexión dedicada del pool y
// publica una señal por cada notificación. Las señales se coalescen: si ya hay una
// pendiente, la nueva se descarta porque el consumidor recalcula todo.
type ProductListener struct {
	pool    *pgxpool.Pool
	log     *logger.Logger
	changes chan struct{}
	backoff time.Duration
}

// NewProductListener construye el listener.
func NewProductListener(pool *pgxpool.Pool, log *logger.Logger) *ProductListener {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductListener{pool: pool, log: log, changes: make(chan struct{}, 1), backoff: 2 * time.Second}
}

// Changes canal de señales de cambio.
func (l *ProductListener) Changes() <-chan struct{} {
	return l.changes
}

// Run escucha hasta que ctx se cancele; ante un fallo de conexión reintenta con espera fija.
func (l *ProductListener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.log.Warn().Err(err).Dur("retry_in", l.backoff).Msg("listener de productos desconectado")
		select {
		case <-ctx.Done():
			return
		case <-time.After(l.backoff):
		}
	}
}

func (l *ProductListener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer releaseListenConn(conn, l.log)

	if _, err := conn.Exec(ctx, "LISTEN "+ProductsChannel); err != nil {
		return err
	}
	l.log.Info().Str("channel", ProductsChannel).Msg("escuchando cambios de productos")
	// una señal al (re)conectar cubre los cambios perdidos mientras no hubo conexión
	l.signal()

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if n == nil {
			return errors.New("notificación vacía")
		}
		l.signal()
	}
}

func (l *ProductListener) signal() {
	select {
	case l.changes <- struct{}{}:
	default:
	}
}

// pooledConn lo que releaseListenConn necesita de *pgxpool.Conn.
type pooledConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Release()
	Hijack() *pgx.Conn
}

// releaseListenConn cancela las suscripciones antes de devolver la conexión al pool; si
// UNLISTEN falla la conexión se saca del pool y se cierra para que nadie herede el LISTEN.
func releaseListenConn(conn pooledConn, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), unlistenTimeout)
	defer cancel()
	_, err := conn.Exec(ctx, "UNLISTEN *")
	if err == nil {
		conn.Release()
		return
	}
	log.Debug().Err(err).Msg("UNLISTEN falló, se descarta la conexión")
	if raw := conn.Hijack(); raw != nil {
		_ = raw.Close(ctx)
	}
}
