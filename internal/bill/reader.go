package bill

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

// Row is a bill prepared for the bills table. Bill holds the formatted values,
// ISODate the date as stored.
type Row struct {
	Bill
	ISODate   string
	Formatted bool
}

// Reader lists the current user's bills for display
type Reader struct {
	store     Store
	formatter Formatter
}

// NewReader creates a Reader, defaulting to FrenchFormatter
func NewReader(store Store, formatter Formatter) *Reader {
	if formatter == nil {
		formatter = FrenchFormatter{}
	}
	return &Reader{
		store:     store,
		formatter: formatter,
	}
}

// List fetches the bills and formats each one. Store errors are returned
// untouched so callers can show them. A bill that fails to format is kept
// as stored.
func (r *Reader) List(ctx context.Context) ([]Row, error) {
	bills, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(bills))
	for _, b := range bills {
		rows = append(rows, r.format(b))
	}
	return rows, nil
}

func (r *Reader) format(b Bill) Row {
	raw := Row{Bill: b, ISODate: b.Date}

	date, err := r.formatter.FormatDate(b.Date)
	if err != nil {
		slog.Warn("Failed to format bill", "id", b.ID, "date", b.Date, "error", err)
		return raw
	}
	status, err := r.formatter.FormatStatus(b.Status)
	if err != nil {
		slog.Warn("Failed to format bill", "id", b.ID, "status", b.Status, "error", err)
		return raw
	}

	formatted := b
	formatted.Date = date
	formatted.Status = Status(status)
	return Row{Bill: formatted, ISODate: b.Date, Formatted: true}
}

// SortAntiChrono orders rows newest first by comparing the stored date
// strings lexically. This matches chronological order only for zero-padded
// YYYY-MM-DD dates.
func SortAntiChrono(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		return strings.Compare(b.ISODate, a.ISODate)
	})
}
