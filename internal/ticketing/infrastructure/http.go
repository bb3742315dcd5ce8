package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	catalogDomain "github.com/luxtrip/go-busline/internal/catalog/domain"
	"github.com/luxtrip/go-busline/internal/ticketing/application"
	"github.com/luxtrip/go-busline/internal/ticketing/domain"
	pkgApp "github.com/luxtrip/go-busline/pkg/application"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
)

const requestTimeout = 10 * time.Second

type TicketingHTTPHandler struct {
	commandBus  pkgApp.CommandBus[pkgDomain.Command[application.IssueTicketData], application.IssueTicketData, domain.Ticket]
	ticketQuery pkgApp.QueryBus[pkgDomain.Query[application.FindTicketsData], application.FindTicketsData, []domain.Ticket]
	seatsQuery  pkgApp.QueryBus[pkgDomain.Query[application.BookedSeatsData], application.BookedSeatsData, []string]
}

func NewTicketingHTTPHandler(
	commandBus pkgApp.CommandBus[pkgDomain.Command[application.IssueTicketData], application.IssueTicketData, domain.Ticket],
	ticketQuery pkgApp.QueryBus[pkgDomain.Query[application.FindTicketsData], application.FindTicketsData, []domain.Ticket],
	seatsQuery pkgApp.QueryBus[pkgDomain.Query[application.BookedSeatsData], application.BookedSeatsData, []string],
) *TicketingHTTPHandler {
	return &TicketingHTTPHandler{
		commandBus:  commandBus,
		ticketQuery: ticketQuery,
		seatsQuery:  seatsQuery,
	}
}

func (h *TicketingHTTPHandler) HandleIssueTicket(w http.ResponseWriter, r *http.Request) {
	var data application.IssueTicketData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	ticket, err := h.commandBus.Dispatch(ctx, application.NewIssueTicketCommand(data))
	if err != nil {
		writeTicketingError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"ticket":  ticket,
		"message": "Ticket created successfully",
	})
}

func (h *TicketingHTTPHandler) HandleTicketsForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid user_id parameter"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tickets, err := h.ticketQuery.Dispatch(ctx, application.NewTicketsForUserQuery(userID))
	if err != nil {
		writeTicketingError(w, err)
		return
	}

	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *TicketingHTTPHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, err := strconv.Atoi(chi.URLParam(r, "ticket_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid ticket_id parameter"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tickets, err := h.ticketQuery.Dispatch(ctx, application.NewFindTicketQuery(ticketID))
	if err != nil {
		writeTicketingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tickets[0])
}

func (h *TicketingHTTPHandler) HandleBookedSeats(w http.ResponseWriter, r *http.Request) {
	busID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid bus_id parameter"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	seats, err := h.seatsQuery.Dispatch(ctx, application.NewBookedSeatsQuery(busID))
	if err != nil {
		writeTicketingError(w, err)
		return
	}

	if seats == nil {
		seats = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookedSeats": seats})
}

// RegisterRoutes mounts the ticketing routes behind the auth gate.
// /book-ticket is a deprecated alias kept for old clients.
func (h *TicketingHTTPHandler) RegisterRoutes(router chi.Router, requireAuth func(http.Handler) http.Handler) {
	router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/api/bus/ticket", h.HandleIssueTicket)
		r.Post("/api/bus/book-ticket", h.HandleIssueTicket)
		r.Get("/api/bus/tickets/{user_id}", h.HandleTicketsForUser)
		r.Get("/api/bus/ticket/{ticket_id}", h.HandleGetTicket)
		r.Get("/api/bus/buses/{id}/seat", h.HandleBookedSeats)
	})
}

func writeTicketingError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":        false,
			"message":        "Missing required fields",
			"missing_fields": validationErr.Fields,
		})
	case errors.Is(err, catalogDomain.ErrBusNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "Bus not found",
		})
	case errors.Is(err, domain.ErrTicketNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "Ticket not found",
		})
	case errors.Is(err, domain.ErrSeatTaken):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"success": false,
			"message": "Seat already booked for this bus",
		})
	case errors.Is(err, domain.ErrTicketCodeConflict):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"success": false,
			"message": "Could not allocate a unique ticket code, please retry",
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Internal Server Error",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
