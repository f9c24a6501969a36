package receipt

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	domain "libreria/internal/domain/invoice"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new receipt store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save overwrites the slot with the given invoice.
// PRE: inv is the invoice of a completed checkout
// POST: Last returns inv until the next Save
func (s *SQLiteStore) Save(ctx context.Context, inv domain.Invoice, savedAt time.Time) error {
	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	query := `INSERT INTO receipt (slot, invoice_id, numero_factura, total, payload, saved_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			invoice_id=excluded.invoice_id,
			numero_factura=excluded.numero_factura,
			total=excluded.total,
			payload=excluded.payload,
			saved_at=excluded.saved_at`

	_, err = s.db.ExecContext(ctx, query,
		inv.ID,
		inv.NumeroFactura,
		inv.Total,
		string(payload),
		savedAt.Format(time.RFC3339Nano),
	)
	return err
}

// Last returns the cached invoice.
// POST: Returns ErrNoReceipt when the slot has never been written
func (s *SQLiteStore) Last(ctx context.Context) (domain.Invoice, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM receipt WHERE slot = 1").Scan(&payload)
	if err == sql.ErrNoRows {
		return domain.Invoice{}, ErrNoReceipt
	}
	if err != nil {
		return domain.Invoice{}, err
	}

	var inv domain.Invoice
	if err := json.Unmarshal([]byte(payload), &inv); err != nil {
		return domain.Invoice{}, fmt.Errorf("decode receipt: %w", err)
	}
	return inv, nil
}
