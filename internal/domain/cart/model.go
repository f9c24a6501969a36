package cart

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Item is a single line of the server-side cart.
// The server owns the cart; instances of this type are a read-only mirror
// and are refetched after every mutation rather than mutated locally.
type Item struct {
	ID         string `json:"id"`
	Nombre     string `json:"nombre"`
	Precio     Amount `json:"precio"`   // unit price in quetzales
	Cantidad   Count  `json:"cantidad"` // integer quantity
	PortadaURL string `json:"portada_url,omitempty"`
}

// Cart maps product id to its line. An empty map is a valid, empty cart.
type Cart map[string]Item

// Totals is the derived summary of a cart.
type Totals struct {
	Total float64 // sum of precio × cantidad
	Count int     // sum of cantidad
}

// Amount is a non-negative currency amount that decodes tolerantly:
// JSON numbers, numeric strings, null and malformed values all land on a
// usable float, with anything non-numeric treated as 0.
type Amount float64

// UnmarshalJSON decodes an Amount from a number, a numeric string or null.
// POST: non-numeric input yields 0 without error
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount(coerceFloat(data))
	return nil
}

// Count is an integer quantity with the same tolerant decoding as Amount.
type Count int

// UnmarshalJSON decodes a Count from a number, a numeric string or null.
// POST: non-numeric input yields 0 without error
func (c *Count) UnmarshalJSON(data []byte) error {
	*c = Count(int(coerceFloat(data)))
	return nil
}

// coerceFloat extracts a float from raw JSON, returning 0 for anything
// that is not a number or a numeric string.
func coerceFloat(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return 0
	}
	return f
}

// Derive computes the cart's total and item count.
// POST: Total == Σ precio_i × cantidad_i and Count == Σ cantidad_i,
// with missing or non-numeric fields contributing 0
func Derive(c Cart) Totals {
	var t Totals
	for _, it := range c {
		t.Total += float64(it.Precio) * float64(it.Cantidad)
		t.Count += int(it.Cantidad)
	}
	return t
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c) == 0
}
