// Package console renders the storefront's views on a terminal and turns
// navigation requests into printed addresses the user can follow.
package console

import (
	"fmt"
	"io"
	"sort"

	"libreria/internal/domain/cart"
	"libreria/internal/domain/checkout"
	"libreria/internal/domain/invoice"
)

// Presenter writes every view to one output stream. It implements the
// view and navigation ports of the application layer.
type Presenter struct {
	Out io.Writer
}

func New(out io.Writer) *Presenter {
	return &Presenter{Out: out}
}

func (p *Presenter) printf(format string, args ...any) {
	fmt.Fprintf(p.Out, format+"\n", args...)
}

// Navigator

func (p *Presenter) Redirect(path string) {
	p.printf(">> ir a %s", path)
}

func (p *Presenter) OpenExternal(url string) {
	p.printf(">> abrir %s", url)
}

// StatusView

func (p *Presenter) ShowStatus(msg string, isError bool) {
	if isError {
		p.printf("[error] %s", msg)
		return
	}
	p.printf("[info] %s", msg)
}

// UserAffordance

func (p *Presenter) ShowUser(nombre string) {
	p.printf("[sesión] %s", nombre)
}

func (p *Presenter) ShowGuest() {
	p.printf("[sesión] invitado")
}

// AuthSurface

func (p *Presenter) CloseAuth() {
	p.printf("[auth] cerrado")
}

func (p *Presenter) SwitchToLogin() {
	p.printf("[auth] formulario de ingreso")
}

func (p *Presenter) ShowLoginError(msg string) {
	p.printf("[auth] error: %s", msg)
}

func (p *Presenter) ShowLoginNotice(msg string) {
	p.printf("[auth] %s", msg)
}

func (p *Presenter) ShowRegisterError(msg string) {
	p.printf("[registro] error: %s", msg)
}

func (p *Presenter) ShowRegisterSuccess(msg string) {
	p.printf("[registro] %s", msg)
}

func (p *Presenter) OfferResendVerification(email string) {
	p.printf("[auth] cuenta sin verificar; usa 'reenviar %s' para recibir otro correo", email)
}

// CartView

func (p *Presenter) RenderCart(c cart.Cart, totals cart.Totals) {
	if len(c) == 0 {
		p.printf("[carrito] vacío")
		return
	}
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		it := c[id]
		p.printf("[carrito] %s  %s  x%d  Q%.2f", it.ID, it.Nombre, it.Cantidad, float64(it.Precio))
	}
	p.printf("[carrito] %d artículos, total Q%.2f", totals.Count, totals.Total)
}

func (p *Presenter) OpenCart() {
	p.printf("[carrito] abierto")
}

// CheckoutView

func (p *Presenter) ShowForm(snap checkout.Snapshot) {
	p.printf("[pago] %d artículos, total Q%.2f; completa entrega y método de pago", len(snap.Items), snap.Total)
}

func (p *Presenter) ShowSubmitting() {
	p.printf("[pago] procesando...")
}

func (p *Presenter) ShowSuccess(inv invoice.Invoice) {
	p.printf("[pago] compra completada: factura %s por Q%.2f", inv.NumeroFactura, inv.Total)
}

func (p *Presenter) ShowError(msg string) {
	p.printf("[pago] error: %s", msg)
}

// HistoryView

func (p *Presenter) RenderHistory(rows []invoice.Invoice, appended bool) {
	if len(rows) == 0 {
		p.printf("[historial] sin compras")
		return
	}
	for _, inv := range rows {
		p.printf("[historial] #%d %s  %s  Q%.2f", inv.ID, inv.NumeroFactura, inv.Fecha.Format("2006-01-02"), inv.Total)
	}
}

func (p *Presenter) ShowLoadMore(visible bool) {
	if visible {
		p.printf("[historial] hay más; usa 'historial más'")
	}
}
