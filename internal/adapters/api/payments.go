package api

import "context"

// CreateCardIntent requests a payment-intent handle from the card
// provider. The returned client secret is an opaque handle, not a
// settlement confirmation; callers treat an empty one as fatal.
func (c *Client) CreateCardIntent(ctx context.Context, total float64) (string, error) {
	body := struct {
		Total float64 `json:"total"`
	}{total}
	var out struct {
		ClientSecret string `json:"clientSecret"`
	}
	if err := c.post(ctx, "/api/v1/payments/stripe/create-payment-intent", body, &out); err != nil {
		return "", err
	}
	return out.ClientSecret, nil
}

// CreateAlternativeOrder requests an order handle from the alternative
// provider and returns its approval URL. Callers tolerate an empty URL;
// the flow proceeds without it.
func (c *Client) CreateAlternativeOrder(ctx context.Context, total float64, currency string) (string, error) {
	body := struct {
		Total    float64 `json:"total"`
		Currency string  `json:"currency"`
	}{total, currency}
	var out struct {
		ID         string `json:"id"`
		ApproveURL string `json:"approveUrl"`
	}
	if err := c.post(ctx, "/api/v1/payments/paypal/create-order", body, &out); err != nil {
		return "", err
	}
	return out.ApproveURL, nil
}
