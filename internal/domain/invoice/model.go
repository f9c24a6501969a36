package invoice

import (
	"errors"
	"time"

	"libreria/internal/domain/cart"
)

// DefaultNIT is the generic "no tax id" value used when the buyer does not
// provide one (consumidor final).
const DefaultNIT = "CF"

// Delivery method constants.
const (
	MetodoDomicilio = "domicilio" // home delivery
	MetodoRecoger   = "recoger"   // store pickup
)

// Payment method constants.
const (
	PagoStripe = "stripe"
	PagoPayPal = "paypal"
)

// Domain errors
var (
	ErrInvalidMetodo   = errors.New("delivery method must be 'domicilio' or 'recoger'")
	ErrMissingNombre   = errors.New("recipient name is required")
	ErrMissingTelefono = errors.New("phone is required for home delivery")
	ErrMissingDireccion = errors.New("address is required for home delivery")
)

// DeliveryInfo describes how a completed purchase reaches the buyer.
// Telefono and Direccion apply to home delivery only.
type DeliveryInfo struct {
	Metodo    string `json:"metodo"`
	Nombre    string `json:"nombre"`
	Telefono  string `json:"telefono,omitempty"`
	Direccion string `json:"direccion,omitempty"`
}

// Validate checks the delivery info's invariants.
// POST: returns nil if valid, error describing the first violation otherwise
func (d DeliveryInfo) Validate() error {
	if d.Metodo != MetodoDomicilio && d.Metodo != MetodoRecoger {
		return ErrInvalidMetodo
	}
	if d.Nombre == "" {
		return ErrMissingNombre
	}
	if d.Metodo == MetodoDomicilio {
		if d.Telefono == "" {
			return ErrMissingTelefono
		}
		if d.Direccion == "" {
			return ErrMissingDireccion
		}
	}
	return nil
}

// Item is a single invoiced line.
type Item struct {
	ProductoID string  `json:"producto_id"`
	Nombre     string  `json:"nombre"`
	Precio     float64 `json:"precio"`
	Cantidad   int     `json:"cantidad"`
	Subtotal   float64 `json:"subtotal"`
}

// Invoice is the server-recorded record of a completed purchase.
// Created exactly once per completed checkout; the client additionally
// caches the most recent one locally for post-hoc re-download.
type Invoice struct {
	ID            int64        `json:"id"`
	NumeroFactura string       `json:"numero_factura"`
	Total         float64      `json:"total"`
	Items         []Item       `json:"items,omitempty"`
	NIT           string       `json:"nit,omitempty"`
	Email         string       `json:"user_email,omitempty"`
	Entrega       DeliveryInfo `json:"entrega,omitempty"`
	Pago          string       `json:"pago,omitempty"`
	Fecha         time.Time    `json:"fecha,omitempty"`
}

// CreateRequest is the payload for invoice creation: the frozen checkout
// items plus billing metadata.
type CreateRequest struct {
	Items   []Item       `json:"items"`
	Email   string       `json:"email,omitempty"`
	NIT     string       `json:"nit"`
	Entrega DeliveryInfo `json:"entrega"`
	Pago    string       `json:"pago"`
}

// HistoryQuery selects one page of a user's invoice history.
type HistoryQuery struct {
	Email string
	Page  int
	Limit int
	From  time.Time // zero means unbounded
	To    time.Time // zero means unbounded
}

// HistoryPage is one page of invoice history plus the server-reported
// total row count.
type HistoryPage struct {
	Items []Invoice `json:"items"`
	Total int       `json:"total"`
}

// ItemsFromCart converts cart lines into invoice lines with subtotals.
// POST: one invoice item per cart line, Subtotal == Precio × Cantidad
func ItemsFromCart(items []cart.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		precio := float64(it.Precio)
		cantidad := int(it.Cantidad)
		out = append(out, Item{
			ProductoID: it.ID,
			Nombre:     it.Nombre,
			Precio:     precio,
			Cantidad:   cantidad,
			Subtotal:   precio * float64(cantidad),
		})
	}
	return out
}
