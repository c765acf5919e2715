package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/branch-pos-api/internal/application/identity"
)

var _ identity.TokenRevoker = (*TokenRevoker)(nil)

// TokenRevoker lista de tokens cerrados con logout; cada entrada vive hasta que el token expira.
type TokenRevoker struct {
	client *Client
	now    func() time.Time
}

// NewTokenRevoker construye la lista de revocados.
func NewTokenRevoker(client *Client) *TokenRevoker {
	return &TokenRevoker{client: client, now: time.Now}
}

func revokedKey(tokenID string) string { return Key("revoked", tokenID) }

// Revoke marca tokenID como revocado hasta until. Un token ya vencido no se guarda.
func (r *TokenRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 || tokenID == "" {
		return nil
	}
	c, err := r.client.cmd()
	if err != nil {
		return err
	}
	return c.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
}

// IsRevoked indica si tokenID fue revocado.
func (r *TokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	c, err := r.client.cmd()
	if err != nil {
		return false, err
	}
	err = c.Get(ctx, revokedKey(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
