package main

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	catalogDomain "github.com/luxtrip/go-busline/internal/catalog/domain"
	catalogInfra "github.com/luxtrip/go-busline/internal/catalog/infrastructure"
	"github.com/luxtrip/go-busline/internal/ticketing/application"
	"github.com/luxtrip/go-busline/internal/ticketing/domain"
	"github.com/luxtrip/go-busline/internal/ticketing/infrastructure"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
	"github.com/luxtrip/go-busline/pkg/infrastructure/channels/adapter"
	watermillLogAdapter "github.com/luxtrip/go-busline/pkg/infrastructure/watermill/adapter"
	zapAdapter "github.com/luxtrip/go-busline/pkg/infrastructure/zaplogger/adapter"
)

// Demo wiring: the issuance workflow running over Watermill's in-process
// GoChannel pub/sub with in-memory repositories.
func main() {
	appLogger, err := zapAdapter.NewZapAppLogger()
	if err != nil {
		panic(err)
	}

	logger := watermillLogAdapter.NewWatermillLoggerAdapter(appLogger)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, logger)

	ticketRepo := infrastructure.NewInMemoryTicketRepository()
	catalogRepo := catalogInfra.NewInMemoryCatalogRepository()
	catalogRepo.AddBus(catalogDomain.Bus{
		ID:             5,
		Name:           "Lux Express",
		DepartureTime:  time.Now().Add(24 * time.Hour).Truncate(time.Second),
		Price:          150000,
		SeatCapacity:   40,
		AvailableSeats: 40,
		RouteID:        1,
		Route: catalogDomain.Route{
			ID:              1,
			DepartureCityID: 1,
			ArrivalCityID:   2,
			DepartureCity:   catalogDomain.City{ID: 1, Name: "Jakarta"},
			ArrivalCity:     catalogDomain.City{ID: 2, Name: "Bandung"},
		},
	})

	commandBus := adapter.NewWatermillCommandBus[pkgDomain.Command[application.IssueTicketData], application.IssueTicketData, domain.Ticket](pubSub, pubSub, appLogger)
	queryBus := adapter.NewWatermillQueryBus[pkgDomain.Query[application.FindTicketsData], application.FindTicketsData, []domain.Ticket](pubSub, pubSub, appLogger)
	eventBus := adapter.NewWatermillEventBus[pkgDomain.Event[string], string](pubSub, appLogger)

	commandBus.RegisterHandler("IssueTicket", application.NewIssueTicketHandler(eventBus, ticketRepo, catalogRepo, appLogger))
	queryBus.RegisterHandler("TicketsForUser", application.NewFindTicketsHandler(ticketRepo, appLogger))
	eventBus.RegisterHandler("TicketIssued", application.NewTicketIssuedEventHandler(appLogger))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	command := application.NewIssueTicketCommand(application.IssueTicketData{
		UserID:        1,
		BusID:         5,
		SeatNo:        "12A",
		TotalPrice:    150000,
		Date:          "2024-05-01",
		BusName:       "Lux Express",
		DepartureCity: "Jakarta",
		ArrivalCity:   "Bandung",
		HasAddons:     false,
	})

	ticket, err := commandBus.Dispatch(ctx, command)
	if err != nil {
		appLogger.Error(ctx, "failed to dispatch issuance command", map[string]interface{}{"error": err})
		return
	}
	appLogger.Info(ctx, "ticket issued", map[string]interface{}{"ticket_code": ticket.TicketCode})

	tickets, err := queryBus.Dispatch(ctx, application.NewTicketsForUserQuery(1))
	if err != nil {
		appLogger.Error(ctx, "failed to dispatch ticket query", map[string]interface{}{"error": err})
		return
	}
	appLogger.Info(ctx, "tickets found", map[string]interface{}{"count": len(tickets)})
}
