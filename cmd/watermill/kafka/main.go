package main

import (
	"context"
	"log"
	"time"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"

	catalogDomain "github.com/luxtrip/go-busline/internal/catalog/domain"
	catalogInfra "github.com/luxtrip/go-busline/internal/catalog/infrastructure"
	"github.com/luxtrip/go-busline/internal/config"
	"github.com/luxtrip/go-busline/internal/ticketing/application"
	"github.com/luxtrip/go-busline/internal/ticketing/domain"
	"github.com/luxtrip/go-busline/internal/ticketing/infrastructure"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
	"github.com/luxtrip/go-busline/pkg/infrastructure/kafka/adapter"
	watermillLogAdapter "github.com/luxtrip/go-busline/pkg/infrastructure/watermill/adapter"
	zapAdapter "github.com/luxtrip/go-busline/pkg/infrastructure/zaplogger/adapter"
)

// Demo wiring: the issuance workflow running over Kafka topics with
// in-memory repositories. Topics are created up front so the first
// dispatch does not race topic auto-creation.
func main() {
	appLogger, err := zapAdapter.NewZapAppLogger()
	if err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := watermillLogAdapter.NewWatermillLoggerAdapter(appLogger)
	marshaler := kafka.DefaultMarshaler{}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.KafkaBrokers,
		Marshaler: marshaler,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create Kafka publisher: %v", err)
	}
	defer publisher.Close()

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V1_0_0_0
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.ClientID = "busline"

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.KafkaBrokers,
		Unmarshaler:           marshaler,
		ConsumerGroup:         "busline_consumer_group",
		OverwriteSaramaConfig: saramaConfig,
		InitializeTopicDetails: &sarama.TopicDetail{
			NumPartitions:     1,
			ReplicationFactor: 1,
		},
	}, logger)
	if err != nil {
		log.Fatalf("failed to create Kafka subscriber: %v", err)
	}
	defer subscriber.Close()

	for _, topic := range []string{"IssueTicket", "IssueTicket_result", "TicketsForUser", "TicketsForUser_response", "TicketIssued"} {
		if err := subscriber.SubscribeInitialize(topic); err != nil {
			log.Fatalf("failed to initialize Kafka topic %q: %v", topic, err)
		}
	}

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

	commandBus := adapter.NewKafkaCommandBus[pkgDomain.Command[application.IssueTicketData], application.IssueTicketData, domain.Ticket](publisher, subscriber, appLogger)
	queryBus := adapter.NewKafkaQueryBus[pkgDomain.Query[application.FindTicketsData], application.FindTicketsData, []domain.Ticket](publisher, subscriber, appLogger)
	eventBus := adapter.NewKafkaEventBus[pkgDomain.Event[string], string](publisher, appLogger)

	commandBus.RegisterHandler("IssueTicket", application.NewIssueTicketHandler(eventBus, ticketRepo, catalogRepo, appLogger))
	queryBus.RegisterHandler("TicketsForUser", application.NewFindTicketsHandler(ticketRepo, appLogger))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
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
