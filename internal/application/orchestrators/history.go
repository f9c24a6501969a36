package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"libreria/internal/domain/invoice"
)

// HistoryAPI defines the backend surface needed by the history paginator.
type HistoryAPI interface {
	ListInvoices(ctx context.Context, q invoice.HistoryQuery) (invoice.HistoryPage, error)
	GetInvoice(ctx context.Context, id int64) (invoice.Invoice, error)
	PrintViewURL(id int64) string
}

// HistoryView renders the purchase history list.
type HistoryView interface {
	RenderHistory(rows []invoice.Invoice, appended bool)
	ShowLoadMore(visible bool)
}

// DefaultHistoryPageSize is how many invoices one page carries.
const DefaultHistoryPageSize = 10

// ErrHistoryNotLoaded is returned by LoadMore before any initial load.
var ErrHistoryNotLoaded = errors.New("history has not been loaded yet")

// HistoryPaginator pages through a user's invoices. The date filter is
// sticky: once set it applies to every subsequent page until changed or
// cleared, so "load more" never mixes filtered and unfiltered pages.
type HistoryPaginator struct {
	API    HistoryAPI
	View   HistoryView
	Status StatusView

	// PageSize falls back to DefaultHistoryPageSize when zero.
	PageSize int

	email string
	page  int
	from  time.Time
	to    time.Time
	rows  []invoice.Invoice
	total int
}

// Rows returns the invoices accumulated so far.
func (h *HistoryPaginator) Rows() []invoice.Invoice { return h.rows }

// Total returns the server-side match count for the active filter.
func (h *HistoryPaginator) Total() int { return h.total }

// HasMore reports whether more pages exist beyond what is loaded.
func (h *HistoryPaginator) HasMore() bool { return len(h.rows) < h.total }

// Load fetches the first page for the given user, keeping whatever date
// filter is currently set.
func (h *HistoryPaginator) Load(ctx context.Context, email string) error {
	h.email = email
	return h.fetch(ctx, 1, false)
}

// LoadMore appends the next page under the same sticky filter.
func (h *HistoryPaginator) LoadMore(ctx context.Context) error {
	if h.email == "" {
		return ErrHistoryNotLoaded
	}
	if !h.HasMore() {
		return nil
	}
	return h.fetch(ctx, h.page+1, true)
}

// Filter sets the sticky date range and reloads from the first page.
// Zero bounds are open-ended.
func (h *HistoryPaginator) Filter(ctx context.Context, from, to time.Time) error {
	if h.email == "" {
		return ErrHistoryNotLoaded
	}
	h.from = from
	h.to = to
	return h.fetch(ctx, 1, false)
}

// ClearFilter drops the date range and reloads from the first page.
func (h *HistoryPaginator) ClearFilter(ctx context.Context) error {
	return h.Filter(ctx, time.Time{}, time.Time{})
}

func (h *HistoryPaginator) fetch(ctx context.Context, page int, appendRows bool) error {
	limit := h.PageSize
	if limit <= 0 {
		limit = DefaultHistoryPageSize
	}

	res, err := h.API.ListInvoices(ctx, invoice.HistoryQuery{
		Email: h.email,
		Page:  page,
		Limit: limit,
		From:  h.from,
		To:    h.to,
	})
	if err != nil {
		slog.Info("history_event", "event", "fetch_failed", "page", page, "error", err.Error())
		h.Status.ShowStatus(err.Error(), true)
		return err
	}

	h.page = page
	h.total = res.Total
	if appendRows {
		h.rows = append(h.rows, res.Items...)
	} else {
		h.rows = res.Items
	}

	slog.Info("history_event", "event", "loaded", "page", page, "rows", len(h.rows), "total", h.total)
	h.View.RenderHistory(h.rows, appendRows)
	h.View.ShowLoadMore(h.HasMore())
	return nil
}

// Download fetches one invoice fresh from the server and writes it as
// indented JSON.
func (h *HistoryPaginator) Download(ctx context.Context, id int64, w io.Writer) error {
	inv, err := h.API.GetInvoice(ctx, id)
	if err != nil {
		h.Status.ShowStatus(err.Error(), true)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(inv)
}

// PrintURL returns the printable view's address for one invoice.
func (h *HistoryPaginator) PrintURL(id int64) string {
	return h.API.PrintViewURL(id)
}
