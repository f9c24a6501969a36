package api

import (
	"context"

	"libreria/internal/domain/cart"
)

// CartGet returns the server cart as an id→item mapping.
func (c *Client) CartGet(ctx context.Context) (cart.Cart, error) {
	var out cart.Cart
	if err := c.get(ctx, "/api/v1/cart", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = cart.Cart{}
	}
	return out, nil
}

// CartAdd adds the given line to the server cart.
func (c *Client) CartAdd(ctx context.Context, item cart.Item) error {
	return c.post(ctx, "/api/v1/cart/add", item, nil)
}

// CartUpdate sets the absolute quantity for a product.
func (c *Client) CartUpdate(ctx context.Context, id string, cantidad int) error {
	body := struct {
		ID       string `json:"id"`
		Cantidad int    `json:"cantidad"`
	}{id, cantidad}
	return c.post(ctx, "/api/v1/cart/update", body, nil)
}

// CartRemove removes a product from the server cart.
func (c *Client) CartRemove(ctx context.Context, id string) error {
	body := struct {
		ID string `json:"id"`
	}{id}
	return c.post(ctx, "/api/v1/cart/remove", body, nil)
}

// CartClear empties the server cart.
func (c *Client) CartClear(ctx context.Context) error {
	return c.post(ctx, "/api/v1/cart/clear", nil, nil)
}
