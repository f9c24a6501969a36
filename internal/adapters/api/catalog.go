package api

import (
	"context"
	"net/url"
	"strings"

	"libreria/internal/domain/catalog"
)

// Products lists the catalog, optionally filtered by a search query.
// Records are normalized before being returned.
func (c *Client) Products(ctx context.Context, q string) ([]catalog.Product, error) {
	query := url.Values{}
	if q != "" {
		query.Set("q", q)
	}
	var raw []map[string]any
	if err := c.get(ctx, "/api/v1/catalogo/productos", query, &raw); err != nil {
		return nil, err
	}
	products := make([]catalog.Product, 0, len(raw))
	for _, r := range raw {
		products = append(products, catalog.Normalize(r))
	}
	return products, nil
}

// Books searches the external book passthrough.
func (c *Client) Books(ctx context.Context, q string) ([]catalog.Product, error) {
	query := url.Values{}
	query.Set("q", q)
	var raw []map[string]any
	if err := c.get(ctx, "/api/v1/books", query, &raw); err != nil {
		return nil, err
	}
	books := make([]catalog.Product, 0, len(raw))
	for _, r := range raw {
		books = append(books, catalog.Normalize(r))
	}
	return books, nil
}

// PostalInfo is the result of a postal-code lookup.
type PostalInfo struct {
	Codigo string `json:"codigo"`
	Ciudad string `json:"ciudad"`
	Estado string `json:"estado"`
}

// Postal looks up a postal code.
func (c *Client) Postal(ctx context.Context, codigo string) (PostalInfo, error) {
	var out PostalInfo
	err := c.get(ctx, "/api/v1/postal/"+url.PathEscape(strings.TrimSpace(codigo)), nil, &out)
	return out, err
}

// AssistantAsk forwards a message to the conversational assistant and
// returns its markdown reply.
func (c *Client) AssistantAsk(ctx context.Context, message string) (string, error) {
	body := struct {
		Message string `json:"message"`
	}{message}
	var out struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	if err := c.post(ctx, "/api/v1/ia/chat", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
