package orchestrators

import (
	"context"
	"log/slog"

	"libreria/internal/domain/cart"
	"libreria/internal/domain/catalog"
)

// CartAPI defines the backend surface needed by the cart controller.
// The server owns the cart; every mutation round-trips through it and
// the mirror is refetched afterward.
type CartAPI interface {
	CartGet(ctx context.Context) (cart.Cart, error)
	CartAdd(ctx context.Context, item cart.Item) error
	CartUpdate(ctx context.Context, id string, cantidad int) error
	CartRemove(ctx context.Context, id string) error
	CartClear(ctx context.Context) error
}

// CartView renders the mirrored cart.
type CartView interface {
	RenderCart(c cart.Cart, totals cart.Totals)
	OpenCart()
}

// CartController mirrors the server-side cart. It holds the last fetched
// state only for read access; every mutation refetches before rendering,
// so the server copy always wins.
type CartController struct {
	API    CartAPI
	View   CartView
	Status StatusView

	current cart.Cart
}

// Current returns the last fetched cart state.
func (cc *CartController) Current() cart.Cart {
	return cc.current
}

// Reload fetches the cart and re-renders. A fetch failure renders an
// empty cart rather than leaving stale items on screen.
func (cc *CartController) Reload(ctx context.Context) {
	c, err := cc.API.CartGet(ctx)
	if err != nil {
		slog.Info("cart_event", "event", "fetch_failed", "error", err.Error())
		c = cart.Cart{}
	}
	cc.render(c)
}

// Add puts one unit of a product in the cart, then reloads and opens the
// cart so the result is visible immediately.
func (cc *CartController) Add(ctx context.Context, p catalog.Product) error {
	item := cart.Item{
		ID:         p.ID,
		Nombre:     p.Nombre,
		Precio:     cart.Amount(p.Precio),
		Cantidad:   1,
		PortadaURL: p.PortadaURL,
	}
	if err := cc.API.CartAdd(ctx, item); err != nil {
		slog.Info("cart_event", "event", "add_failed", "id", p.ID, "error", err.Error())
		cc.Status.ShowStatus(err.Error(), true)
		return err
	}
	slog.Info("cart_event", "event", "added", "id", p.ID)
	cc.Reload(ctx)
	cc.View.OpenCart()
	return nil
}

// SetQuantity applies a +1/-1 step to a line. The next quantity is
// computed from a fresh server fetch, not from whatever the view shows,
// and is sent as an absolute value. The server resolves out-of-range
// results (zero or below removes the line).
func (cc *CartController) SetQuantity(ctx context.Context, id string, delta int) error {
	fresh, err := cc.API.CartGet(ctx)
	if err != nil {
		slog.Info("cart_event", "event", "fetch_failed", "id", id, "error", err.Error())
		cc.Status.ShowStatus(err.Error(), true)
		return err
	}
	// A line missing from the fresh fetch counts as quantity zero; the
	// update is still sent and the server resolves it.
	next := int(fresh[id].Cantidad) + delta
	if err := cc.API.CartUpdate(ctx, id, next); err != nil {
		slog.Info("cart_event", "event", "update_failed", "id", id, "cantidad", next, "error", err.Error())
		cc.Status.ShowStatus(err.Error(), true)
		return err
	}
	cc.Reload(ctx)
	return nil
}

// Remove deletes a line outright.
func (cc *CartController) Remove(ctx context.Context, id string) error {
	if err := cc.API.CartRemove(ctx, id); err != nil {
		slog.Info("cart_event", "event", "remove_failed", "id", id, "error", err.Error())
		cc.Status.ShowStatus(err.Error(), true)
		return err
	}
	cc.Reload(ctx)
	return nil
}

// Clear empties the cart server-side and resyncs the view.
func (cc *CartController) Clear(ctx context.Context) error {
	if err := cc.API.CartClear(ctx); err != nil {
		slog.Info("cart_event", "event", "clear_failed", "error", err.Error())
		cc.Status.ShowStatus(err.Error(), true)
		return err
	}
	cc.Reload(ctx)
	return nil
}

func (cc *CartController) render(c cart.Cart) {
	cc.current = c
	cc.View.RenderCart(c, cart.Derive(c))
}
