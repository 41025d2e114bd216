package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/evently/internal/api/dto"
	"github.com/spec-kit/evently/internal/service"
	apperrors "github.com/spec-kit/evently/pkg/util"
)

// EventsHandler exposes the event catalog.
type EventsHandler struct {
	events *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(events *service.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

// Create handles POST /events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	input, err := eventInput(c)
	if err != nil {
		return err
	}
	event, err := h.events.Create(c.UserContext(), actor.ID, input)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewEventResponse(event))
}

// Update handles PUT /events/:id.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	input, err := eventInput(c)
	if err != nil {
		return err
	}
	event, err := h.events.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewEventResponse(event))
}

// UpdateStatus handles PATCH /events/:id/status.
func (h *EventsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.EventStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	event, err := h.events.UpdateStatus(c.UserContext(), actor.ID, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewEventResponse(event))
}

// ListAll handles GET /events/all.
func (h *EventsHandler) ListAll(c *fiber.Ctx) error {
	list, err := h.events.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewEventList(list))
}

// ListPublished handles GET /events.
func (h *EventsHandler) ListPublished(c *fiber.Ctx) error {
	list, err := h.events.ListPublished(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewEventList(list))
}

// GetPublished handles GET /events/:id.
func (h *EventsHandler) GetPublished(c *fiber.Ctx) error {
	event, err := h.events.GetPublished(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewEventResponse(event))
}

func eventInput(c *fiber.Ctx) (service.EventInput, error) {
	var req dto.EventRequest
	if err := bind(c, &req); err != nil {
		return service.EventInput{}, err
	}
	when, err := req.ParsedDateTime()
	if err != nil {
		return service.EventInput{}, apperrors.NewValidationError("validation failed", map[string]any{
			"dateTime": "must be an RFC 3339 timestamp",
		})
	}
	return service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		DateTime:    when,
		Location:    req.Location,
		MaxCapacity: req.MaxCapacity,
		Status:      req.Status,
	}, nil
}
