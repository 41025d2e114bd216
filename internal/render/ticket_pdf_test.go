package render

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spec-kit/evently/internal/domain"
)

func sampleTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:            "7f1d2a0e-3c55-4f55-9d0b-0c6b1d2e9a11",
		ReservationID: "res-1",
		Reservation: &domain.Reservation{
			ID:     "res-1",
			Status: domain.ReservationStatusConfirmed,
			Event: &domain.Event{
				Title:    "Gophercon Lisbon",
				DateTime: time.Date(2026, 11, 3, 9, 30, 0, 0, time.UTC),
				Location: "Centro de Congressos",
			},
			Participant: &domain.User{FirstName: "Ana", LastName: "Lima"},
		},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewPDFRenderer(WithCompression(false))
	out, err := r.Render(sampleTicket())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("missing PDF header: %q", out[:8])
	}
	for _, want := range []string{"OFFICIAL TICKET", "Gophercon Lisbon", "Ana Lima", "7f1d2a0e-3c55-4f55-9d0b-0c6b1d2e9a11"} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("document does not contain %q", want)
		}
	}
}

func TestRenderRejectsIncompleteTicket(t *testing.T) {
	r := NewPDFRenderer()
	ticket := sampleTicket()
	ticket.Reservation.Participant = nil
	if _, err := r.Render(ticket); !errors.Is(err, ErrIncompleteTicket) {
		t.Fatalf("err = %v, want ErrIncompleteTicket", err)
	}
}

func TestRenderOutsideLatin1WithoutFont(t *testing.T) {
	ticket := sampleTicket()
	ticket.Reservation.Participant = &domain.User{FirstName: "Ива́н", LastName: "Петров"}
	ticket.Reservation.Event.Title = "東京 Go"

	out, err := NewPDFRenderer().Render(ticket)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatal("missing PDF header")
	}
}

func TestRenderMissingUTF8Font(t *testing.T) {
	r := NewPDFRenderer(WithUTF8Font(filepath.Join(t.TempDir(), "missing.ttf")))
	if _, err := r.Render(sampleTicket()); err == nil {
		t.Fatal("expected error for unreadable font")
	}
}
