package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/branch-pos-api/internal/application/checkout"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
)

const (
	defaultCartTTL = 12 * time.Hour
	cartLockTTL    = 30 * time.Second
	releaseTimeout = 2 * time.Second
)

var _ checkout.CartStore = (*CartStore)(nil)

// releaseScript borra KEYS[1] solo si su valor sigue siendo ARGV[1], en una sola operación.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CartStore guarda el carrito de cada sesión como JSON, con expiración, para que
// varias instancias de la API compartan carritos y locks.
type CartStore struct {
	client *Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewCartStore construye el almacén. ttl <= 0 usa 12h.
func NewCartStore(client *Client, ttl time.Duration, log *logger.Logger) *CartStore {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CartStore{client: client, ttl: ttl, log: log}
}

func cartKey(key string) string     { return Key("cart", key) }
func cartLockKey(key string) string { return Key("cart_lock", key) }

// Load devuelve el carrito guardado o uno vacío si no existe o expiró.
func (s *CartStore) Load(ctx context.Context, key string) (*checkout.Cart, error) {
	c, err := s.client.cmd()
	if err != nil {
		return nil, err
	}
	raw, err := c.Get(ctx, cartKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return checkout.NewCart(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	cart := checkout.NewCart()
	if err := json.Unmarshal([]byte(raw), cart); err != nil {
		// Un carrito ilegible se descarta en vez de bloquear la caja.
		s.log.Warn().Err(err).Str("key", key).Msg("carrito corrupto en redis, se descarta")
		return checkout.NewCart(), nil
	}
	return cart, nil
}

// Save serializa el carrito y renueva su expiración.
func (s *CartStore) Save(ctx context.Context, key string, cart *checkout.Cart) error {
	c, err := s.client.cmd()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	return c.Set(ctx, cartKey(key), string(raw), s.ttl).Err()
}

// Delete descarta el carrito.
func (s *CartStore) Delete(ctx context.Context, key string) error {
	c, err := s.client.cmd()
	if err != nil {
		return err
	}
	return c.Del(ctx, cartKey(key)).Err()
}

// Lock toma el lock del carrito con SETNX y un dueño aleatorio. El lock expira solo
// tras 30s si la instancia que lo tomó muere antes de liberarlo.
func (s *CartStore) Lock(ctx context.Context, key string) (func(), error) {
	c, err := s.client.cmd()
	if err != nil {
		return func() {}, err
	}
	owner := uuid.NewString()
	lk := cartLockKey(key)
	ok, err := c.SetNX(ctx, lk, owner, cartLockTTL).Result()
	if err != nil {
		return func() {}, fmt.Errorf("lock cart: %w", err)
	}
	if !ok {
		return func() {}, domain.ErrConflict
	}
	return func() { s.release(c, lk, owner) }, nil
}

// release borra el lock solo si sigue siendo de owner. Si expiró y otra instancia lo
// tomó, el script no lo toca.
func (s *CartStore) release(c Cmdable, lk, owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := releaseScript.Run(ctx, c, []string{lk}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("lock", lk).Msg("no se pudo liberar el lock del carrito")
	}
}
