package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"libreria/internal/domain/checkout"
	"libreria/internal/domain/invoice"
)

// CheckoutAPI defines the backend surface needed by the checkout flow.
type CheckoutAPI interface {
	CreateCardIntent(ctx context.Context, total float64) (string, error)
	CreateAlternativeOrder(ctx context.Context, total float64, currency string) (string, error)
	CreateInvoice(ctx context.Context, req invoice.CreateRequest) (invoice.Invoice, error)
	PrintViewURL(id int64) string
}

// ReceiptCache is the durable single-slot cache of the last invoice.
type ReceiptCache interface {
	Save(ctx context.Context, inv invoice.Invoice, savedAt time.Time) error
	Last(ctx context.Context) (invoice.Invoice, error)
}

// CheckoutView renders the checkout flow's states.
type CheckoutView interface {
	ShowForm(snap checkout.Snapshot)
	ShowSubmitting()
	ShowSuccess(inv invoice.Invoice)
	ShowError(msg string)
}

var (
	ErrCartNotViable   = errors.New("cart is empty or total is zero")
	ErrCheckoutBusy    = errors.New("a checkout is already in progress")
	ErrNotInForm       = errors.New("checkout form is not open")
	ErrSubmitInFlight  = errors.New("a submission is already in flight")
	ErrInvalidPago     = errors.New("unknown payment method")
	ErrNoPaymentHandle = errors.New("payment provider returned no client handle")
	ErrNoCompletedSale = errors.New("no completed purchase in this flow")
)

// CheckoutForm carries the buyer's submission of the checkout form.
type CheckoutForm struct {
	Pago    string
	Email   string
	NIT     string
	Entrega invoice.DeliveryInfo
}

// CheckoutOrchestrator drives a purchase from cart snapshot to invoice.
// The flow is a strict state machine (idle, form entry, submitting, then
// success or failed); Submit refuses to run outside form entry and a
// second submission while one is in flight is rejected.
type CheckoutOrchestrator struct {
	API      CheckoutAPI
	Cart     *CartController
	Receipts ReceiptCache
	View     CheckoutView
	Nav      Navigator

	// Currency is sent with alternative-provider orders. Card intents
	// always charge in quetzales.
	Currency string

	Now        func() time.Time
	GenerateID func() string

	mu          sync.Mutex
	state       checkout.State
	snapshot    checkout.Snapshot
	inFlight    bool
	printOpened bool
	lastInvoice invoice.Invoice
}

// State returns the current flow state. The zero value maps to idle.
func (o *CheckoutOrchestrator) State() checkout.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stateLocked()
}

func (o *CheckoutOrchestrator) stateLocked() checkout.State {
	if o.state == "" {
		return checkout.StateIdle
	}
	return o.state
}

// Snapshot returns the cart snapshot frozen when the flow entered form
// entry. Meaningless outside an active flow.
func (o *CheckoutOrchestrator) Snapshot() checkout.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot
}

// Enter freezes the current cart mirror and opens the checkout form.
// PRE: flow is idle and the cart has at least one item with a positive total
// POST: state is form entry and the snapshot no longer tracks the cart
func (o *CheckoutOrchestrator) Enter(ctx context.Context) (checkout.Snapshot, error) {
	o.mu.Lock()
	if !o.stateLocked().CanTransition(checkout.StateFormEntry) {
		o.mu.Unlock()
		return checkout.Snapshot{}, ErrCheckoutBusy
	}

	snap := checkout.TakeSnapshot(o.Cart.Current(), o.Now())
	if !snap.Viable() {
		o.mu.Unlock()
		return checkout.Snapshot{}, ErrCartNotViable
	}

	o.state = checkout.StateFormEntry
	o.snapshot = snap
	o.printOpened = false
	o.mu.Unlock()

	slog.Info("checkout_event", "event", "entered", "items", len(snap.Items), "total", snap.Total)
	o.View.ShowForm(snap)
	return snap, nil
}

// Cancel abandons the form and discards the snapshot. A no-op outside
// form entry.
func (o *CheckoutOrchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != checkout.StateFormEntry {
		return
	}
	o.state = checkout.StateIdle
	o.snapshot = checkout.Snapshot{}
	slog.Info("checkout_event", "event", "cancelled")
}

// Submit runs the payment and invoice pipeline against the frozen
// snapshot. Validation failures keep the form open without a state
// change. Pipeline failures pass through the failed state, surface the
// error and return to form entry so the buyer can retry.
func (o *CheckoutOrchestrator) Submit(ctx context.Context, form CheckoutForm) error {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return ErrSubmitInFlight
	}
	if o.stateLocked() != checkout.StateFormEntry {
		o.mu.Unlock()
		return ErrNotInForm
	}

	if form.Pago != invoice.PagoStripe && form.Pago != invoice.PagoPayPal {
		o.mu.Unlock()
		o.View.ShowError(ErrInvalidPago.Error())
		return ErrInvalidPago
	}
	if err := form.Entrega.Validate(); err != nil {
		o.mu.Unlock()
		o.View.ShowError(err.Error())
		return err
	}
	nit := form.NIT
	if nit == "" {
		nit = invoice.DefaultNIT
	}

	attempt := o.GenerateID()
	o.inFlight = true
	o.state = checkout.StateSubmitting
	snap := o.snapshot
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	slog.Info("checkout_event", "event", "submitting", "attempt", attempt, "pago", form.Pago, "total", snap.Total)
	o.View.ShowSubmitting()

	approveURL, err := o.preparePayment(ctx, form.Pago, snap.Total, attempt)
	if err != nil {
		return o.fail(attempt, err)
	}

	inv, err := o.API.CreateInvoice(ctx, invoice.CreateRequest{
		Items:   invoice.ItemsFromCart(snap.Items),
		Email:   form.Email,
		NIT:     nit,
		Entrega: form.Entrega,
		Pago:    form.Pago,
	})
	if err != nil {
		return o.fail(attempt, err)
	}

	// A clear failure is surfaced even though the invoice already exists
	// server-side; the buyer must verify before retrying.
	if err := o.Cart.Clear(ctx); err != nil {
		return o.fail(attempt, err)
	}
	if err := o.Receipts.Save(ctx, inv, o.Now()); err != nil {
		slog.Warn("checkout_event", "event", "receipt_cache_failed", "attempt", attempt, "error", err.Error())
	}

	o.mu.Lock()
	o.state = checkout.StateSuccess
	o.lastInvoice = inv
	firstOpen := !o.printOpened
	o.printOpened = true
	o.mu.Unlock()

	slog.Info("checkout_event", "event", "completed", "attempt", attempt, "invoice", inv.NumeroFactura, "total", inv.Total)
	o.View.ShowSuccess(inv)

	if approveURL != "" {
		o.Nav.OpenExternal(approveURL)
	}
	if firstOpen {
		o.Nav.OpenExternal(o.API.PrintViewURL(inv.ID))
	}
	return nil
}

// preparePayment obtains the provider's client handle. A card intent
// without a client secret is unusable and aborts the flow; an
// alternative order without an approval link is only degraded (the
// order exists server-side) and proceeds with a warning.
func (o *CheckoutOrchestrator) preparePayment(ctx context.Context, pago string, total float64, attempt string) (approveURL string, err error) {
	switch pago {
	case invoice.PagoStripe:
		secret, err := o.API.CreateCardIntent(ctx, total)
		if err != nil {
			return "", err
		}
		if secret == "" {
			return "", ErrNoPaymentHandle
		}
		return "", nil
	case invoice.PagoPayPal:
		url, err := o.API.CreateAlternativeOrder(ctx, total, o.Currency)
		if err != nil {
			return "", err
		}
		if url == "" {
			slog.Warn("checkout_event", "event", "approve_url_missing", "attempt", attempt)
		}
		return url, nil
	}
	return "", ErrInvalidPago
}

func (o *CheckoutOrchestrator) fail(attempt string, err error) error {
	o.mu.Lock()
	o.state = checkout.StateFailed
	o.mu.Unlock()

	slog.Info("checkout_event", "event", "failed", "attempt", attempt, "error", err.Error())
	o.View.ShowError(err.Error())

	// Failed is transient: the form reopens over the same snapshot.
	o.mu.Lock()
	o.state = checkout.StateFormEntry
	o.mu.Unlock()
	return err
}

// OpenPrintView reopens the print view of the completed purchase. Unlike
// the automatic open it works any number of times.
func (o *CheckoutOrchestrator) OpenPrintView() error {
	o.mu.Lock()
	if o.state != checkout.StateSuccess {
		o.mu.Unlock()
		return ErrNoCompletedSale
	}
	id := o.lastInvoice.ID
	o.mu.Unlock()
	o.Nav.OpenExternal(o.API.PrintViewURL(id))
	return nil
}

// DownloadReceipt writes the cached last invoice as indented JSON.
// Works after a restart; the cache is durable.
func (o *CheckoutOrchestrator) DownloadReceipt(ctx context.Context, w io.Writer) error {
	inv, err := o.Receipts.Last(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(inv)
}
