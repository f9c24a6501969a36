package receipt

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"libreria/internal/adapters/storage"
	domain "libreria/internal/domain/invoice"
)

// openTestStore creates an in-memory store for testing.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return NewSQLiteStore(db)
}

var savedAt = time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

// TestSQLiteStore_Last_Empty tests that an unwritten slot reports no receipt.
func TestSQLiteStore_Last_Empty(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Last(context.Background()); !errors.Is(err, ErrNoReceipt) {
		t.Errorf("expected ErrNoReceipt, got %v", err)
	}
}

// TestSQLiteStore_SaveAndLast tests a full round trip.
func TestSQLiteStore_SaveAndLast(t *testing.T) {
	s := openTestStore(t)
	inv := domain.Invoice{
		ID:            7,
		NumeroFactura: "FCT-20260901-0001",
		Total:         23,
		NIT:           domain.DefaultNIT,
		Items: []domain.Item{
			{ProductoID: "A", Nombre: "Cuaderno", Precio: 11.5, Cantidad: 2, Subtotal: 23},
		},
		Entrega: domain.DeliveryInfo{Metodo: domain.MetodoRecoger, Nombre: "Ana"},
		Pago:    domain.PagoStripe,
	}
	if err := s.Save(context.Background(), inv, savedAt); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.Last(context.Background())
	if err != nil {
		t.Fatalf("last failed: %v", err)
	}
	if got.NumeroFactura != inv.NumeroFactura || got.Total != inv.Total {
		t.Errorf("unexpected receipt: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].Subtotal != 23 {
		t.Errorf("expected item list to survive the round trip: %+v", got.Items)
	}
}

// TestSQLiteStore_Save_Overwrites tests the single-slot overwrite contract.
func TestSQLiteStore_Save_Overwrites(t *testing.T) {
	s := openTestStore(t)
	first := domain.Invoice{ID: 1, NumeroFactura: "FCT-20260901-0001", Total: 10}
	second := domain.Invoice{ID: 2, NumeroFactura: "FCT-20260901-0002", Total: 99}

	if err := s.Save(context.Background(), first, savedAt); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Save(context.Background(), second, savedAt.Add(time.Hour)); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, err := s.Last(context.Background())
	if err != nil {
		t.Fatalf("last failed: %v", err)
	}
	if got.ID != 2 {
		t.Errorf("expected slot to hold the most recent invoice, got %+v", got)
	}
}
