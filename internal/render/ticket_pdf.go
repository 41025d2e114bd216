package render

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/spec-kit/evently/internal/domain"
)

const ticketHeading = "OFFICIAL TICKET"

// ErrIncompleteTicket is returned when the ticket is missing its reservation, event or participant.
var ErrIncompleteTicket = errors.New("ticket is missing reservation details")

// PDFRenderer renders tickets as A6 portrait PDF documents.
type PDFRenderer struct {
	compress bool
	fontPath string
	now      func() time.Time
}

// Option customises a PDFRenderer.
type Option func(*PDFRenderer)

// WithCompression toggles stream compression. Defaults to on.
func WithCompression(enabled bool) Option {
	return func(r *PDFRenderer) { r.compress = enabled }
}

// WithUTF8Font renders text with the TrueType font at path, covering scripts
// outside cp1252. Without it the core Helvetica font is used and unmappable
// runes print as replacement glyphs.
func WithUTF8Font(path string) Option {
	return func(r *PDFRenderer) { r.fontPath = path }
}

// NewPDFRenderer builds a renderer.
func NewPDFRenderer(opts ...Option) *PDFRenderer {
	r := &PDFRenderer{compress: true, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ContentType of the rendered document.
func (r *PDFRenderer) ContentType() string {
	return "application/pdf"
}

// Render produces the ticket document. The ticket's reservation must carry its event and participant.
func (r *PDFRenderer) Render(ticket *domain.Ticket) ([]byte, error) {
	if ticket == nil || ticket.Reservation == nil || ticket.Reservation.Event == nil || ticket.Reservation.Participant == nil {
		return nil, ErrIncompleteTicket
	}
	event := ticket.Reservation.Event
	participant := ticket.Reservation.Participant

	pdf := fpdf.New("P", "mm", "A6", "")
	pdf.SetCompression(r.compress)
	pdf.SetTitle(fmt.Sprintf("Ticket %s", ticket.ID), true)
	pdf.SetCreator("evently", true)
	pdf.SetCreationDate(r.now())
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	family, tr := r.fonts(pdf)
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right

	pdf.SetFont(family, "B", 16)
	pdf.CellFormat(width, 10, ticketHeading, "", 1, "C", false, 0, "")
	pdf.SetDrawColor(60, 60, 60)
	pdf.Line(left, pdf.GetY()+1, pageW-right, pdf.GetY()+1)
	pdf.Ln(5)

	field := func(label, value string) {
		pdf.SetFont(family, "B", 8)
		pdf.CellFormat(width, 4, tr(label), "", 1, "L", false, 0, "")
		pdf.SetFont(family, "", 11)
		pdf.MultiCell(width, 5, tr(value), "", "L", false)
		pdf.Ln(2)
	}

	field("Event", event.Title)
	field("Date", event.DateTime.Format("Monday, 02 January 2006 15:04 MST"))
	field("Location", event.Location)
	field("Participant", participant.FullName())

	pdf.Ln(2)
	pdf.SetFont("Courier", "", 8)
	pdf.CellFormat(width, 4, "Ticket ID: "+ticket.ID, "", 1, "C", false, 0, "")

	if pdf.Err() {
		return nil, fmt.Errorf("render ticket %s: %w", ticket.ID, pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket %s: %w", ticket.ID, err)
	}
	return buf.Bytes(), nil
}

// fonts registers the configured UTF-8 font, or falls back to Helvetica with a cp1252 translator.
func (r *PDFRenderer) fonts(pdf *fpdf.Fpdf) (string, func(string) string) {
	if r.fontPath == "" {
		return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
	}
	const family = "ticket"
	pdf.AddUTF8Font(family, "", r.fontPath)
	pdf.AddUTF8Font(family, "B", r.fontPath)
	return family, func(s string) string { return s }
}
