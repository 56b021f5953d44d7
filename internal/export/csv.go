package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// DefaultRowLimit caps export size; exceeding rows are dropped and a
// truncation marker is appended.
const DefaultRowLimit = 10000

// SanitizeCell neutralizes spreadsheet formula injection. A cell whose
// first character is one of = + - @ is prefixed with a single quote so
// spreadsheet tools treat it as text.
func SanitizeCell(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@':
		return "'" + cell
	}
	return cell
}

// Writer produces RFC 4180 CSV with per-cell sanitization and a hard row
// cap.
type Writer struct {
	cw        *csv.Writer
	limit     int
	written   int
	truncated bool
}

// NewWriter creates a CSV writer with the given row limit. A limit <= 0
// falls back to DefaultRowLimit.
func NewWriter(w io.Writer, limit int) *Writer {
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	return &Writer{
		cw:    csv.NewWriter(w),
		limit: limit,
	}
}

// WriteHeader writes the header row; it does not count against the limit
func (w *Writer) WriteHeader(header []string) error {
	return w.cw.Write(header)
}

// WriteRow writes a sanitized data row. Once the limit is reached the
// row is silently dropped and the truncation marker will be emitted on
// Close.
func (w *Writer) WriteRow(row []string) error {
	if w.written >= w.limit {
		w.truncated = true
		return nil
	}

	sanitized := make([]string, len(row))
	for i, cell := range row {
		sanitized[i] = SanitizeCell(cell)
	}
	if err := w.cw.Write(sanitized); err != nil {
		return err
	}
	w.written++
	return nil
}

// Close flushes the writer, appending the truncation marker when rows
// were dropped.
func (w *Writer) Close() error {
	if w.truncated {
		if err := w.cw.Write([]string{fmt.Sprintf("# troncato a %d righe", w.limit)}); err != nil {
			return err
		}
	}
	w.cw.Flush()
	return w.cw.Error()
}

// BookingsCSV exports bookings for the back-office
func BookingsCSV(w io.Writer, bookings []models.Booking, limit int) error {
	cw := NewWriter(w, limit)
	if err := cw.WriteHeader([]string{"id", "date", "people", "type", "name", "email", "phone", "notes", "status", "created_at"}); err != nil {
		return err
	}

	for _, b := range bookings {
		notes := ""
		if b.Notes != nil {
			notes = *b.Notes
		}
		row := []string{
			strconv.FormatInt(b.ID, 10),
			b.Date.Format("2006-01-02 15:04"),
			strconv.Itoa(b.People),
			b.Type,
			b.Name,
			b.Email,
			b.Phone,
			notes,
			b.Status,
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := cw.WriteRow(row); err != nil {
			return err
		}
	}
	return cw.Close()
}

// ContactsCSV exports the address book
func ContactsCSV(w io.Writer, contacts []models.Contact, limit int) error {
	cw := NewWriter(w, limit)
	if err := cw.WriteHeader([]string{"id", "email", "name", "phone", "agree_privacy", "agree_marketing", "last_booking_at", "total_bookings"}); err != nil {
		return err
	}

	for _, c := range contacts {
		lastBooking := ""
		if c.LastBookingAt != nil {
			lastBooking = c.LastBookingAt.Format("2006-01-02 15:04")
		}
		row := []string{
			strconv.FormatInt(c.ID, 10),
			c.Email,
			c.Name,
			c.Phone,
			strconv.FormatBool(c.AgreePrivacy),
			strconv.FormatBool(c.AgreeMarketing),
			lastBooking,
			strconv.Itoa(c.TotalBookings),
		}
		if err := cw.WriteRow(row); err != nil {
			return err
		}
	}
	return cw.Close()
}
