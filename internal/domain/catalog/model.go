package catalog

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Product type constants.
const (
	TipoLibro      = "Libro"
	TipoUtilEscolar = "UtilEscolar"
)

// Product is a normalized catalog entry ready for rendering. The catalog
// endpoint returns heterogeneous records (books, school supplies, legacy
// rows); Normalize flattens them into this shape.
type Product struct {
	ID         string  `json:"id"`
	Nombre     string  `json:"nombre"`
	Precio     float64 `json:"precio"`
	Tipo       string  `json:"tipo"`
	PortadaURL string  `json:"portada_url"`
}

var whitespace = regexp.MustCompile(`\s+`)

// Normalize maps a raw catalog record onto a Product. Field fallbacks
// mirror what the catalog actually emits: id may arrive as id,
// id_producto, sku or isbn; books carry titulo instead of nombre; price
// may be precio or price, numeric or string.
func Normalize(raw map[string]any) Product {
	id := firstString(raw, "id", "id_producto", "sku", "isbn")
	nombre := firstString(raw, "nombre", "titulo")
	if nombre == "" {
		nombre = "Producto"
	}
	if id == "" {
		id = whitespace.ReplaceAllString(strings.ToLower(nombre), "_")
	}

	precio := firstFloat(raw, "precio", "price")

	tipo := firstString(raw, "tipo")
	if tipo == "" {
		if firstString(raw, "isbn") != "" {
			tipo = TipoLibro
		} else {
			tipo = TipoUtilEscolar
		}
	}

	img := firstString(raw, "portada_url", "imagen_url")
	if img == "" {
		img = fmt.Sprintf("/static/img/productos/%s.png", id)
	}

	return Product{ID: id, Nombre: nombre, Precio: precio, Tipo: tipo, PortadaURL: img}
}

// PlaceholderURL is the fallback image used when a product's own image
// cannot be loaded.
func (p Product) PlaceholderURL() string {
	return "https://placehold.co/280x200?text=" + url.QueryEscape(p.Tipo)
}

// firstString returns the first non-empty string value among the keys.
func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// firstFloat returns the first numeric value among the keys, accepting
// JSON numbers and numeric strings; anything else counts as absent.
func firstFloat(raw map[string]any, keys ...string) float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f
			}
		}
	}
	return 0
}
