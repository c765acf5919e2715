package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/branch-pos-api/internal/application/auth"
)

var _ auth.Throttle = (*LoginThrottle)(nil)

// LoginThrottle cuenta los logins fallidos por email en una ventana fija compartida entre instancias.
type LoginThrottle struct {
	client *Client
	max    int64
	window time.Duration
}

// NewLoginThrottle construye el throttle. max <= 0 desactiva el límite.
func NewLoginThrottle(client *Client, max int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, max: int64(max), window: window}
}

func throttleKey(key string) string { return Key("login_fail", key) }

// Allowed indica si quedan intentos en la ventana actual.
func (t *LoginThrottle) Allowed(ctx context.Context, key string) (bool, error) {
	if t.max <= 0 {
		return true, nil
	}
	c, err := t.client.cmd()
	if err != nil {
		return false, err
	}
	raw, err := c.Get(ctx, throttleKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("contador de login inválido %q: %w", raw, err)
	}
	return n < t.max, nil
}

// Fail suma un intento fallido; el primero abre la ventana.
func (t *LoginThrottle) Fail(ctx context.Context, key string) error {
	if t.max <= 0 {
		return nil
	}
	_, err := t.client.incrWithTTL(ctx, throttleKey(key), t.window)
	return err
}

// Reset borra el contador.
func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	c, err := t.client.cmd()
	if err != nil {
		return err
	}
	return c.Del(ctx, throttleKey(key)).Err()
}
