package auth

import (
	"context"
	"sync"
	"time"
)

// Throttle cuenta intentos fallidos de login por clave (email normalizado).
type Throttle interface {
	// Allowed indica si la clave puede intentar otro login.
	Allowed(ctx context.Context, key string) (bool, error)
	// Fail registra un intento fallido.
	Fail(ctx context.Context, key string) error
	// Reset borra el contador tras un login correcto.
	Reset(ctx context.Context, key string) error
}

// Mailer envía el enlace de restablecimiento de contraseña.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, link string) error
}

// MemoryThrottle Throttle en memoria con ventana fija por clave.
type MemoryThrottle struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]throttleEntry
	now     func() time.Time
}

type throttleEntry struct {
	count int
	until time.Time
}

// NewMemoryThrottle construye el throttle. max <= 0 desactiva el límite.
func NewMemoryThrottle(max int, window time.Duration) *MemoryThrottle {
	return &MemoryThrottle{max: max, window: window, entries: make(map[string]throttleEntry), now: time.Now}
}

func (t *MemoryThrottle) Allowed(_ context.Context, key string) (bool, error) {
	if t.max <= 0 {
		return true, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok || !t.now().Before(e.until) {
		return true, nil
	}
	return e.count < t.max, nil
}

func (t *MemoryThrottle) Fail(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	e := t.entries[key]
	if !now.Before(e.until) {
		e = throttleEntry{until: now.Add(t.window)}
	}
	e.count++
	t.entries[key] = e
	return nil
}

func (t *MemoryThrottle) Reset(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
	return nil
}
