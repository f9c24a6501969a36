package receipt

import (
	"context"
	"errors"
	"time"

	domain "libreria/internal/domain/invoice"
)

// ErrNoReceipt is returned when no checkout has completed yet.
var ErrNoReceipt = errors.New("no cached receipt")

// Store persists the single most recent invoice for post-hoc re-download.
// One slot, overwritten on every successful checkout completion.
type Store interface {
	Save(ctx context.Context, inv domain.Invoice, savedAt time.Time) error
	Last(ctx context.Context) (domain.Invoice, error)
}
