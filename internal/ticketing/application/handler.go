package application

import (
	"context"
	"errors"
	"time"

	catalogDomain "github.com/luxtrip/go-busline/internal/catalog/domain"
	"github.com/luxtrip/go-busline/internal/ticketing/domain"
	pkgApp "github.com/luxtrip/go-busline/pkg/application"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
)

// codeRetries bounds the fresh-code retries after a ticket code
// collision before the conflict is surfaced to the caller.
const codeRetries = 2

type issueTicketHandler struct {
	eventBus pkgApp.EventBus[pkgDomain.Event[string], string]
	tickets  domain.TicketRepository
	catalog  catalogDomain.CatalogRepository
	logger   pkgApp.AppLogger
}

func (h *issueTicketHandler) Handle(ctx context.Context, command pkgDomain.Command[IssueTicketData]) (domain.Ticket, error) {
	if ctx.Err() != nil {
		return domain.Ticket{}, ctx.Err()
	}

	data := command.Payload()

	date, verr := validate(data)
	if verr != nil {
		pkgApp.LogWarn(ctx, h.logger, "invalid issuance request", map[string]interface{}{
			"missing_fields": verr.Fields,
		})
		return domain.Ticket{}, verr
	}

	pkgApp.LogInfo(ctx, h.logger, "attempting to create ticket", map[string]interface{}{
		"bus_id": data.BusID,
	})

	if _, err := h.catalog.FindBusByID(ctx, data.BusID); err != nil {
		if errors.Is(err, catalogDomain.ErrBusNotFound) {
			pkgApp.LogWarn(ctx, h.logger, "bus not found", map[string]interface{}{
				"bus_id": data.BusID,
			})
		} else {
			pkgApp.LogError(ctx, h.logger, "error checking bus", err, map[string]interface{}{
				"bus_id": data.BusID,
			})
		}
		return domain.Ticket{}, err
	}

	if !data.HasAddons {
		h.logger.Debug(ctx, "skipping addon lookup, no addons requested", map[string]interface{}{
			"bus_id": data.BusID,
		})
	}

	ticket := domain.Ticket{
		UserID:        data.UserID,
		BusID:         data.BusID,
		SeatNo:        data.SeatNo,
		TotalPrice:    data.TotalPrice,
		Date:          date,
		BusName:       data.BusName,
		DepartureCity: data.DepartureCity,
		ArrivalCity:   data.ArrivalCity,
		HasAddons:     data.HasAddons,
	}

	var saved domain.Ticket
	for attempt := 0; ; attempt++ {
		code, err := domain.NewTicketCode()
		if err != nil {
			pkgApp.LogError(ctx, h.logger, "error generating ticket code", err, nil)
			return domain.Ticket{}, err
		}
		ticket.TicketCode = code

		saved, err = h.tickets.Save(ctx, ticket)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrTicketCodeConflict) && attempt < codeRetries {
			pkgApp.LogWarn(ctx, h.logger, "ticket code collision, retrying", map[string]interface{}{
				"ticket_code": code,
				"attempt":     attempt + 1,
			})
			continue
		}
		if errors.Is(err, domain.ErrSeatTaken) {
			pkgApp.LogWarn(ctx, h.logger, "seat already booked", map[string]interface{}{
				"bus_id":  data.BusID,
				"seat_no": data.SeatNo,
			})
		} else {
			pkgApp.LogError(ctx, h.logger, "error saving ticket", err, map[string]interface{}{
				"bus_id": data.BusID,
			})
		}
		return domain.Ticket{}, err
	}

	event := NewTicketIssuedEvent(saved.TicketCode)
	if err := h.eventBus.Publish(ctx, event); err != nil {
		pkgApp.LogError(ctx, h.logger, "error publishing event", err, nil)
	}

	pkgApp.LogInfo(ctx, h.logger, "new ticket created", map[string]interface{}{
		"ticket_code": saved.TicketCode,
	})
	return saved, nil
}

// validate checks the mandatory issuance fields and parses the travel
// date. The addon flag is the only optional field.
func validate(data IssueTicketData) (time.Time, *domain.ValidationError) {
	var missing []string
	if data.UserID == 0 {
		missing = append(missing, "user_id")
	}
	if data.BusID == 0 {
		missing = append(missing, "bus_id")
	}
	if data.SeatNo == "" {
		missing = append(missing, "seat_no")
	}
	if data.TotalPrice == 0 {
		missing = append(missing, "total_price")
	}
	if data.BusName == "" {
		missing = append(missing, "bus_name")
	}
	if data.DepartureCity == "" {
		missing = append(missing, "departure_city")
	}
	if data.ArrivalCity == "" {
		missing = append(missing, "arrival_city")
	}

	var date time.Time
	if data.Date == "" {
		missing = append(missing, "date")
	} else {
		parsed, err := time.Parse("2006-01-02", data.Date)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339, data.Date)
		}
		if err != nil {
			missing = append(missing, "date")
		} else {
			date = parsed
		}
	}

	if len(missing) > 0 {
		return time.Time{}, &domain.ValidationError{Fields: missing}
	}
	return date, nil
}

func NewIssueTicketHandler(
	eventBus pkgApp.EventBus[pkgDomain.Event[string], string],
	tickets domain.TicketRepository,
	catalog catalogDomain.CatalogRepository,
	logger pkgApp.AppLogger,
) pkgApp.CommandHandler[pkgDomain.Command[IssueTicketData], IssueTicketData, domain.Ticket] {
	return &issueTicketHandler{
		eventBus: eventBus,
		tickets:  tickets,
		catalog:  catalog,
		logger:   logger,
	}
}

type findTicketsHandler struct {
	tickets domain.TicketRepository
	logger  pkgApp.AppLogger
}

func (h *findTicketsHandler) Handle(ctx context.Context, query pkgDomain.Query[FindTicketsData]) ([]domain.Ticket, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	data := query.Payload()

	if data.TicketID != nil {
		ticket, err := h.tickets.FindByID(ctx, *data.TicketID)
		if err != nil {
			if errors.Is(err, domain.ErrTicketNotFound) {
				pkgApp.LogWarn(ctx, h.logger, "ticket not found", map[string]interface{}{
					"ticket_id": *data.TicketID,
				})
			} else {
				pkgApp.LogError(ctx, h.logger, "error fetching ticket", err, map[string]interface{}{
					"ticket_id": *data.TicketID,
				})
			}
			return nil, err
		}
		return []domain.Ticket{ticket}, nil
	}

	if data.UserID == nil {
		return nil, errors.New("ticket query needs a user id or a ticket id")
	}

	tickets, err := h.tickets.FindByUserID(ctx, *data.UserID)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "error fetching tickets", err, map[string]interface{}{
			"user_id": *data.UserID,
		})
		return nil, err
	}

	pkgApp.LogInfo(ctx, h.logger, "fetched tickets for user", map[string]interface{}{
		"user_id": *data.UserID,
		"count":   len(tickets),
	})
	return tickets, nil
}

func NewFindTicketsHandler(tickets domain.TicketRepository, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FindTicketsData], FindTicketsData, []domain.Ticket] {
	return &findTicketsHandler{
		tickets: tickets,
		logger:  logger,
	}
}

type bookedSeatsHandler struct {
	tickets domain.TicketRepository
	logger  pkgApp.AppLogger
}

func (h *bookedSeatsHandler) Handle(ctx context.Context, query pkgDomain.Query[BookedSeatsData]) ([]string, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	data := query.Payload()

	seats, err := h.tickets.FindSeatsByBusID(ctx, data.BusID)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "error fetching booked seats", err, map[string]interface{}{
			"bus_id": data.BusID,
		})
		return nil, err
	}

	pkgApp.LogInfo(ctx, h.logger, "fetched booked seats", map[string]interface{}{
		"bus_id": data.BusID,
		"count":  len(seats),
	})
	return seats, nil
}

func NewBookedSeatsHandler(tickets domain.TicketRepository, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[BookedSeatsData], BookedSeatsData, []string] {
	return &bookedSeatsHandler{
		tickets: tickets,
		logger:  logger,
	}
}

type ticketIssuedEventHandler struct {
	logger pkgApp.AppLogger
}

func (h *ticketIssuedEventHandler) Handle(ctx context.Context, event pkgDomain.Event[string]) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	pkgApp.LogInfo(ctx, h.logger, "ticket issued", map[string]interface{}{
		"ticket_code": event.Payload(),
	})
	return nil
}

func NewTicketIssuedEventHandler(logger pkgApp.AppLogger) pkgApp.EventHandler[pkgDomain.Event[string], string] {
	return &ticketIssuedEventHandler{logger: logger}
}
