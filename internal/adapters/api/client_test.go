package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"libreria/internal/domain/cart"
	"libreria/internal/domain/invoice"
	"libreria/internal/domain/session"
)

// newTestClient starts a test backend and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// TestClient_ErrorMessage tests that the server's error field surfaces.
func TestClient_ErrorMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "El email ya está registrado."})
	}))

	err := c.Register(context.Background(), "Ana", "ana@mail.gt", "secret", "tok")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Errorf("expected status 409, got %d", apiErr.Status)
	}
	if apiErr.Message != "El email ya está registrado." {
		t.Errorf("unexpected message: %q", apiErr.Message)
	}
}

// TestClient_ErrorFallback tests the generic message for bodyless errors.
func TestClient_ErrorFallback(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := c.CartClear(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Error() != "error 502" {
		t.Errorf("expected generic fallback, got %q", apiErr.Error())
	}
}

// TestClient_SessionCookie tests that the session cookie set at login is
// replayed on subsequent calls.
func TestClient_SessionCookie(t *testing.T) {
	var sawCookie bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("session"); err == nil && ck.Value == "s1" {
			sawCookie = true
		}
		json.NewEncoder(w).Encode(session.Identity{Authenticated: true, User: session.User{Email: "ana@mail.gt"}})
	})
	c := newTestClient(t, mux)

	if err := c.Login(context.Background(), "ana@mail.gt", "pw", "tok"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	id, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if !sawCookie {
		t.Error("expected session cookie to be replayed")
	}
	if !id.Authenticated || id.User.Email != "ana@mail.gt" {
		t.Errorf("unexpected identity: %+v", id)
	}
}

// TestClient_CartRoundTrip tests cart read and mutation bodies.
func TestClient_CartRoundTrip(t *testing.T) {
	var updateBody map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/cart", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lib1":{"id":"lib1","nombre":"El Quijote","precio":"85","cantidad":2}}`))
	})
	mux.HandleFunc("POST /api/v1/cart/update", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&updateBody)
		w.Write([]byte(`{}`))
	})
	c := newTestClient(t, mux)

	got, err := c.CartGet(context.Background())
	if err != nil {
		t.Fatalf("cart get failed: %v", err)
	}
	if it := got["lib1"]; float64(it.Precio) != 85 || int(it.Cantidad) != 2 {
		t.Errorf("unexpected cart item: %+v", it)
	}

	if err := c.CartUpdate(context.Background(), "lib1", 3); err != nil {
		t.Fatalf("cart update failed: %v", err)
	}
	if updateBody["id"] != "lib1" || updateBody["cantidad"] != float64(3) {
		t.Errorf("unexpected update body: %v", updateBody)
	}
}

// TestClient_PaymentHandles tests both provider handle calls.
func TestClient_PaymentHandles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/payments/stripe/create-payment-intent", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]float64
		json.NewDecoder(r.Body).Decode(&body)
		if body["total"] != 23 {
			t.Errorf("expected total 23, got %v", body["total"])
		}
		w.Write([]byte(`{"clientSecret":"pi_123_secret"}`))
	})
	mux.HandleFunc("POST /api/v1/payments/paypal/create-order", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"ORD-1","approveUrl":"https://paypal.test/approve/ORD-1"}`))
	})
	c := newTestClient(t, mux)

	secret, err := c.CreateCardIntent(context.Background(), 23)
	if err != nil || secret != "pi_123_secret" {
		t.Errorf("expected client secret, got %q err=%v", secret, err)
	}
	approve, err := c.CreateAlternativeOrder(context.Background(), 23, "GTQ")
	if err != nil || approve != "https://paypal.test/approve/ORD-1" {
		t.Errorf("expected approve URL, got %q err=%v", approve, err)
	}
}

// TestClient_ListInvoices tests history query encoding and paging payload.
func TestClient_ListInvoices(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/facturas", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("email") != "ana@mail.gt" || q.Get("page") != "2" || q.Get("limit") != "10" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("from") != "2026-01-01" || q.Get("to") != "2026-06-30" {
			t.Errorf("unexpected date range: %v", q)
		}
		json.NewEncoder(w).Encode(invoice.HistoryPage{
			Items: []invoice.Invoice{{ID: 7, NumeroFactura: "FCT-20260115-0001", Total: 85}},
			Total: 13,
		})
	})
	c := newTestClient(t, mux)

	page, err := c.ListInvoices(context.Background(), invoice.HistoryQuery{
		Email: "ana@mail.gt",
		Page:  2,
		Limit: 10,
		From:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 13 || len(page.Items) != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
}

// TestClient_CreateInvoice tests the invoice creation payload.
func TestClient_CreateInvoice(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/facturas", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["nit"] != "CF" || body["pago"] != "stripe" {
			t.Errorf("unexpected body: %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(invoice.Invoice{ID: 9, NumeroFactura: "FCT-20260901-0001", Total: 23})
	})
	c := newTestClient(t, mux)

	inv, err := c.CreateInvoice(context.Background(), invoice.CreateRequest{
		Items: invoice.ItemsFromCart([]cart.Item{{ID: "A", Precio: 11.5, Cantidad: 2}}),
		NIT:   invoice.DefaultNIT,
		Entrega: invoice.DeliveryInfo{
			Metodo: invoice.MetodoRecoger,
			Nombre: "Ana",
		},
		Pago: invoice.PagoStripe,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if inv.ID != 9 || inv.NumeroFactura != "FCT-20260901-0001" {
		t.Errorf("unexpected invoice: %+v", inv)
	}
}

// TestClient_PrintViewURL tests the print view address.
func TestClient_PrintViewURL(t *testing.T) {
	c, err := New("https://tienda.test")
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	want := "https://tienda.test/api/v1/facturas/print/42"
	if got := c.PrintViewURL(42); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

// TestClient_Products tests catalog normalization on the way in.
func TestClient_Products(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/catalogo/productos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "cuaderno" {
			t.Errorf("expected search query, got %v", r.URL.Query())
		}
		w.Write([]byte(`[{"id_producto":"ut1","nombre":"Cuaderno 80h","price":"12"}]`))
	})
	c := newTestClient(t, mux)

	products, err := c.Products(context.Background(), "cuaderno")
	if err != nil {
		t.Fatalf("products failed: %v", err)
	}
	if len(products) != 1 || products[0].ID != "ut1" || products[0].Precio != 12 {
		t.Errorf("unexpected products: %+v", products)
	}
}
