package checkout

import (
	"context"

	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
)

// TxRunner ejecuta el alta de la orden y los descuentos de stock en una sola transacción.
// Si fn devuelve error no queda ningún cambio aplicado.
type TxRunner interface {
	RunCheckout(ctx context.Context, fn func(
		orders repository.OrderRepository,
		products repository.ProductRepository,
	) error) error
}

// CartStore guarda un carrito por sesión.
type CartStore interface {
	// Load devuelve el carrito de key o uno vacío si no existe.
	Load(ctx context.Context, key string) (*Cart, error)
	Save(ctx context.Context, key string, cart *Cart) error
	Delete(ctx context.Context, key string) error
	// Lock toma el carrito de key en exclusiva; devuelve domain.ErrConflict si otra
	// operación lo tiene tomado. release libera el lock.
	Lock(ctx context.Context, key string) (release func(), err error)
}
