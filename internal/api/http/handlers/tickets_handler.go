package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/evently/internal/service"
)

// TicketsHandler serves ticket documents.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// Download handles GET /tickets/:reservationId/download.
func (h *TicketsHandler) Download(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	doc, err := h.tickets.Download(c.UserContext(), actor.ID, c.Params("reservationId"))
	if err != nil {
		return err
	}
	c.Attachment(doc.FileName)
	c.Set(fiber.HeaderContentType, doc.ContentType)
	return c.Status(fiber.StatusOK).Send(doc.Data)
}
