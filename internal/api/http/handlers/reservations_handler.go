package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/evently/internal/api/dto"
	"github.com/spec-kit/evently/internal/service"
)

// ReservationsHandler exposes reservation endpoints.
type ReservationsHandler struct {
	reservations *service.ReservationService
}

// NewReservationsHandler constructs handler.
func NewReservationsHandler(reservations *service.ReservationService) *ReservationsHandler {
	return &ReservationsHandler{reservations: reservations}
}

// Create handles POST /reservations.
func (h *ReservationsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateReservationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	reservation, err := h.reservations.Create(c.UserContext(), actor.ID, req.EventID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewReservationResponse(reservation))
}

// UpdateStatus handles PATCH /reservations/:id/status.
func (h *ReservationsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.ReservationStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	reservation, err := h.reservations.UpdateStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewReservationResponse(reservation))
}

// Cancel handles DELETE /reservations/:id.
func (h *ReservationsHandler) Cancel(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	reservation, err := h.reservations.Cancel(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewReservationResponse(reservation))
}

// ListAll handles GET /reservations/all.
func (h *ReservationsHandler) ListAll(c *fiber.Ctx) error {
	list, err := h.reservations.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewReservationList(list))
}

// ListMine handles GET /reservations/me.
func (h *ReservationsHandler) ListMine(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	list, err := h.reservations.ListByParticipant(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewReservationList(list))
}

// Get handles GET /reservations/:id.
func (h *ReservationsHandler) Get(c *fiber.Ctx) error {
	reservation, err := h.reservations.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewReservationResponse(reservation))
}

// History handles GET /reservations/:id/history.
func (h *ReservationsHandler) History(c *fiber.Ctx) error {
	entries, err := h.reservations.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewHistoryList(entries))
}
