package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"github.com/support-copilot/ticket-api/internal/api/dto"
	"github.com/support-copilot/ticket-api/internal/domain"
	"github.com/support-copilot/ticket-api/internal/repository"
	"github.com/support-copilot/ticket-api/pkg/util"
)

const (
	minDescriptionLen = 10
	maxDescriptionLen = 5000
)

// TicketProcessor is the slice of the processing service the handler needs.
type TicketProcessor interface {
	ProcessTicket(ctx context.Context, ticketID, description string) (*domain.ClassificationResult, error)
}

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	processor TicketProcessor
	tickets   repository.TicketRepository
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(processor TicketProcessor, tickets repository.TicketRepository) *TicketsHandler {
	return &TicketsHandler{processor: processor, tickets: tickets}
}

// Process POST /api/tickets/process.
func (h *TicketsHandler) Process(c *fiber.Ctx) error {
	var req dto.ProcessTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.TicketID) == "" {
		return util.NewValidationError("ticket_id required", map[string]any{"field": "ticket_id"})
	}
	description, err := validateDescription(req.Description)
	if err != nil {
		return err
	}

	result, err := h.processor.ProcessTicket(c.Context(), req.TicketID, description)
	if err != nil {
		return err
	}

	return c.JSON(dto.ProcessTicketResponse{
		Success:  true,
		TicketID: req.TicketID,
		Analysis: dto.FromResult(*result),
		Message:  "Ticket procesado exitosamente",
	})
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// List GET /api/tickets/.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter := parseListQuery(c)
	tickets, err := h.tickets.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(dto.ListTicketsResponse{Success: true, Count: len(items), Tickets: items})
}

// Create POST /api/tickets/.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	description, err := validateDescription(req.Description)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.Create(c.Context(), description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTicket(ticket))
}

// Delete DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tickets.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// Stats GET /api/tickets/stats/overview.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.tickets.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.StatsResponse{Success: true, Stats: dto.FromStats(stats, time.Now())})
}

func validateDescription(description string) (string, error) {
	trimmed := strings.TrimSpace(description)
	length := utf8.RuneCountInString(trimmed)
	if length < minDescriptionLen || length > maxDescriptionLen {
		return "", util.NewValidationError("description must be between 10 and 5000 characters",
			map[string]any{"field": "description", "length": length})
	}
	return trimmed, nil
}

func parseListQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{
		Limit:  parseInt(c.Query("limit"), 50),
		Offset: parseInt(c.Query("offset"), 0),
	}
	if raw := c.Query("processed"); raw != "" {
		if processed, err := strconv.ParseBool(raw); err == nil {
			filter.Processed = &processed
		}
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if sentiment := c.Query("sentiment"); sentiment != "" {
		filter.Sentiment = &sentiment
	}
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
