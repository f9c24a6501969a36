package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"libreria/internal/domain/invoice"
)

// CreateInvoice records a completed purchase and returns the created
// invoice.
func (c *Client) CreateInvoice(ctx context.Context, req invoice.CreateRequest) (invoice.Invoice, error) {
	var out invoice.Invoice
	if err := c.post(ctx, "/api/v1/facturas", req, &out); err != nil {
		return invoice.Invoice{}, err
	}
	return out, nil
}

// GetInvoice fetches a single invoice with its full item list.
func (c *Client) GetInvoice(ctx context.Context, id int64) (invoice.Invoice, error) {
	var out invoice.Invoice
	if err := c.get(ctx, fmt.Sprintf("/api/v1/facturas/%d", id), nil, &out); err != nil {
		return invoice.Invoice{}, err
	}
	return out, nil
}

// ListInvoices fetches one page of the user's invoice history.
func (c *Client) ListInvoices(ctx context.Context, q invoice.HistoryQuery) (invoice.HistoryPage, error) {
	query := url.Values{}
	query.Set("email", q.Email)
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("limit", strconv.Itoa(q.Limit))
	if !q.From.IsZero() {
		query.Set("from", q.From.Format("2006-01-02"))
	}
	if !q.To.IsZero() {
		query.Set("to", q.To.Format("2006-01-02"))
	}
	var out invoice.HistoryPage
	if err := c.get(ctx, "/api/v1/facturas", query, &out); err != nil {
		return invoice.HistoryPage{}, err
	}
	return out, nil
}

// PrintViewURL returns the address of an invoice's print view, meant to be
// opened in a new browsing context.
func (c *Client) PrintViewURL(id int64) string {
	return c.URL(fmt.Sprintf("/api/v1/facturas/print/%d", id), nil)
}
