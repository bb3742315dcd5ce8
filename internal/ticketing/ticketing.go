package ticketing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	catalogDomain "github.com/luxtrip/go-busline/internal/catalog/domain"
	"github.com/luxtrip/go-busline/internal/ticketing/application"
	"github.com/luxtrip/go-busline/internal/ticketing/domain"
	"github.com/luxtrip/go-busline/internal/ticketing/infrastructure"
	pkgApp "github.com/luxtrip/go-busline/pkg/application"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
)

type TicketingSlice struct {
	httpHandler *infrastructure.TicketingHTTPHandler
	requireAuth func(http.Handler) http.Handler
}

func NewTicketingSlice(
	commandBus pkgApp.CommandBus[pkgDomain.Command[application.IssueTicketData], application.IssueTicketData, domain.Ticket],
	ticketQueryBus pkgApp.QueryBus[pkgDomain.Query[application.FindTicketsData], application.FindTicketsData, []domain.Ticket],
	seatsQueryBus pkgApp.QueryBus[pkgDomain.Query[application.BookedSeatsData], application.BookedSeatsData, []string],
	eventBus pkgApp.EventBus[pkgDomain.Event[string], string],
	tickets domain.TicketRepository,
	catalog catalogDomain.CatalogRepository,
	requireAuth func(http.Handler) http.Handler,
	logger pkgApp.AppLogger,
) *TicketingSlice {
	commandBus.RegisterHandler("IssueTicket", application.NewIssueTicketHandler(eventBus, tickets, catalog, logger))

	ticketsHandler := application.NewFindTicketsHandler(tickets, logger)
	ticketQueryBus.RegisterHandler("TicketsForUser", ticketsHandler)
	ticketQueryBus.RegisterHandler("FindTicket", ticketsHandler)

	seatsQueryBus.RegisterHandler("BookedSeats", application.NewBookedSeatsHandler(tickets, logger))
	eventBus.RegisterHandler("TicketIssued", application.NewTicketIssuedEventHandler(logger))

	return &TicketingSlice{
		httpHandler: infrastructure.NewTicketingHTTPHandler(commandBus, ticketQueryBus, seatsQueryBus),
		requireAuth: requireAuth,
	}
}

func (s *TicketingSlice) RegisterRoutes(router *chi.Mux) {
	s.httpHandler.RegisterRoutes(router, s.requireAuth)
}
