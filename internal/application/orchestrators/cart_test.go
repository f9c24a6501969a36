package orchestrators

import (
	"context"
	"errors"
	"testing"

	"libreria/internal/domain/cart"
	"libreria/internal/domain/catalog"
)

// mockCartAPI implements CartAPI on an in-memory cart.
type mockCartAPI struct {
	state      cart.Cart
	getErr     error
	addErr     error
	updateErr  error
	removeErr  error
	clearErr   error
	getCalls   int
	lastUpdate struct {
		id       string
		cantidad int
	}
}

func (m *mockCartAPI) snapshot() cart.Cart {
	out := cart.Cart{}
	for id, it := range m.state {
		out[id] = it
	}
	return out
}

func (m *mockCartAPI) CartGet(ctx context.Context) (cart.Cart, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.snapshot(), nil
}

func (m *mockCartAPI) CartAdd(ctx context.Context, item cart.Item) error {
	if m.addErr != nil {
		return m.addErr
	}
	if m.state == nil {
		m.state = cart.Cart{}
	}
	if existing, ok := m.state[item.ID]; ok {
		existing.Cantidad += item.Cantidad
		m.state[item.ID] = existing
	} else {
		m.state[item.ID] = item
	}
	return nil
}

func (m *mockCartAPI) CartUpdate(ctx context.Context, id string, cantidad int) error {
	m.lastUpdate.id = id
	m.lastUpdate.cantidad = cantidad
	if m.updateErr != nil {
		return m.updateErr
	}
	if cantidad <= 0 {
		delete(m.state, id)
	} else if it, ok := m.state[id]; ok {
		it.Cantidad = cart.Count(cantidad)
		m.state[id] = it
	}
	return nil
}

func (m *mockCartAPI) CartRemove(ctx context.Context, id string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.state, id)
	return nil
}

func (m *mockCartAPI) CartClear(ctx context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.state = cart.Cart{}
	return nil
}

// mockCartView records renderings.
type mockCartView struct {
	rendered   []cart.Cart
	lastTotals cart.Totals
	opened     int
}

func (v *mockCartView) RenderCart(c cart.Cart, totals cart.Totals) {
	v.rendered = append(v.rendered, c)
	v.lastTotals = totals
}

func (v *mockCartView) OpenCart() { v.opened++ }

// mockStatus records status-bar messages.
type mockStatus struct {
	messages []string
	errors   []bool
}

func (s *mockStatus) ShowStatus(msg string, isError bool) {
	s.messages = append(s.messages, msg)
	s.errors = append(s.errors, isError)
}

func newCartController(apiMock *mockCartAPI) (*CartController, *mockCartView, *mockStatus) {
	view := &mockCartView{}
	status := &mockStatus{}
	return &CartController{API: apiMock, View: view, Status: status}, view, status
}

// TestCartController_Reload_FetchFailureRendersEmpty tests that a failed
// fetch never leaves stale items visible.
func TestCartController_Reload_FetchFailureRendersEmpty(t *testing.T) {
	apiMock := &mockCartAPI{getErr: errors.New("backend down")}
	cc, view, _ := newCartController(apiMock)

	cc.Reload(context.Background())
	if len(view.rendered) != 1 {
		t.Fatalf("expected one render, got %d", len(view.rendered))
	}
	if len(view.rendered[0]) != 0 {
		t.Errorf("expected empty cart render, got %v", view.rendered[0])
	}
	if view.lastTotals.Total != 0 || view.lastTotals.Count != 0 {
		t.Errorf("expected zero totals, got %+v", view.lastTotals)
	}
}

// TestCartController_Add tests add, render and auto-open.
func TestCartController_Add(t *testing.T) {
	apiMock := &mockCartAPI{}
	cc, view, _ := newCartController(apiMock)

	p := catalog.Product{ID: "lib-1", Nombre: "Cien años de soledad", Precio: 85, PortadaURL: "/static/img/productos/lib-1.png"}
	if err := cc.Add(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.opened != 1 {
		t.Errorf("expected cart to open once, got %d", view.opened)
	}
	if got := cc.Current()["lib-1"]; got.Cantidad != 1 || float64(got.Precio) != 85 {
		t.Errorf("unexpected cart line: %+v", got)
	}
	if view.lastTotals.Total != 85 || view.lastTotals.Count != 1 {
		t.Errorf("unexpected totals: %+v", view.lastTotals)
	}
}

// TestCartController_Add_Failure tests error surfacing without opening.
func TestCartController_Add_Failure(t *testing.T) {
	apiMock := &mockCartAPI{addErr: errors.New("producto agotado")}
	cc, view, status := newCartController(apiMock)

	err := cc.Add(context.Background(), catalog.Product{ID: "lib-1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if view.opened != 0 {
		t.Errorf("expected cart to stay closed, got %d opens", view.opened)
	}
	if len(status.messages) != 1 || !status.errors[0] {
		t.Errorf("expected one error status, got %v", status.messages)
	}
}

// TestCartController_SetQuantity_FreshFetch tests that the step is
// applied to the server's quantity, not a stale local copy.
func TestCartController_SetQuantity_FreshFetch(t *testing.T) {
	apiMock := &mockCartAPI{state: cart.Cart{
		"lib-1": {ID: "lib-1", Nombre: "Atlas", Precio: 120, Cantidad: 3},
	}}
	cc, _, _ := newCartController(apiMock)

	// The local mirror is stale on purpose.
	cc.current = cart.Cart{"lib-1": {ID: "lib-1", Cantidad: 1}}

	if err := cc.SetQuantity(context.Background(), "lib-1", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if apiMock.lastUpdate.cantidad != 4 {
		t.Errorf("expected absolute cantidad 4 from server-side 3+1, got %d", apiMock.lastUpdate.cantidad)
	}
	if got := cc.Current()["lib-1"]; got.Cantidad != 4 {
		t.Errorf("expected mirrored cantidad 4, got %d", got.Cantidad)
	}
}

// TestCartController_SetQuantity_DecrementToZero tests that the
// controller sends zero as-is and the server removes the line.
func TestCartController_SetQuantity_DecrementToZero(t *testing.T) {
	apiMock := &mockCartAPI{state: cart.Cart{
		"lib-1": {ID: "lib-1", Precio: 50, Cantidad: 1},
	}}
	cc, _, _ := newCartController(apiMock)

	if err := cc.SetQuantity(context.Background(), "lib-1", -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if apiMock.lastUpdate.cantidad != 0 {
		t.Errorf("expected absolute cantidad 0, got %d", apiMock.lastUpdate.cantidad)
	}
	if _, ok := cc.Current()["lib-1"]; ok {
		t.Error("expected line removed from mirror")
	}
}

// TestCartController_SetQuantity_LineVanished tests that a line missing
// from the fresh fetch is stepped from zero and the absolute value still
// posted.
func TestCartController_SetQuantity_LineVanished(t *testing.T) {
	apiMock := &mockCartAPI{state: cart.Cart{}}
	cc, view, _ := newCartController(apiMock)
	cc.current = cart.Cart{"lib-1": {ID: "lib-1", Cantidad: 2}}

	if err := cc.SetQuantity(context.Background(), "lib-1", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if apiMock.lastUpdate.id != "lib-1" || apiMock.lastUpdate.cantidad != 1 {
		t.Errorf("expected absolute cantidad 1 from 0+1, got %+v", apiMock.lastUpdate)
	}
	if len(view.rendered) != 1 {
		t.Errorf("expected one resync render, got %v", view.rendered)
	}
}

// TestCartController_Remove tests line removal.
func TestCartController_Remove(t *testing.T) {
	apiMock := &mockCartAPI{state: cart.Cart{
		"lib-1": {ID: "lib-1", Precio: 50, Cantidad: 1},
		"lib-2": {ID: "lib-2", Precio: 30, Cantidad: 2},
	}}
	cc, view, _ := newCartController(apiMock)

	if err := cc.Remove(context.Background(), "lib-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cc.Current()["lib-1"]; ok {
		t.Error("expected lib-1 removed")
	}
	if view.lastTotals.Total != 60 || view.lastTotals.Count != 2 {
		t.Errorf("unexpected totals after removal: %+v", view.lastTotals)
	}
}

// TestCartController_Clear tests full clear plus resync.
func TestCartController_Clear(t *testing.T) {
	apiMock := &mockCartAPI{state: cart.Cart{
		"lib-1": {ID: "lib-1", Precio: 50, Cantidad: 1},
	}}
	cc, view, _ := newCartController(apiMock)

	if err := cc.Clear(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cc.Current().IsEmpty() {
		t.Errorf("expected empty mirror, got %v", cc.Current())
	}
	if apiMock.getCalls != 1 {
		t.Errorf("expected one resync fetch, got %d", apiMock.getCalls)
	}
	if len(view.rendered) != 1 || len(view.rendered[0]) != 0 {
		t.Errorf("expected empty render, got %v", view.rendered)
	}
}
