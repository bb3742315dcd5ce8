package main

import (
	"context"
	"net/http"
	"os"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/go-chi/chi/v5"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/luxtrip/go-busline/internal/catalog"
	catalogApp "github.com/luxtrip/go-busline/internal/catalog/application"
	catalogDomain "github.com/luxtrip/go-busline/internal/catalog/domain"
	catalogInfra "github.com/luxtrip/go-busline/internal/catalog/infrastructure"
	"github.com/luxtrip/go-busline/internal/config"
	"github.com/luxtrip/go-busline/internal/identity"
	identityApp "github.com/luxtrip/go-busline/internal/identity/application"
	identityDomain "github.com/luxtrip/go-busline/internal/identity/domain"
	identityInfra "github.com/luxtrip/go-busline/internal/identity/infrastructure"
	"github.com/luxtrip/go-busline/internal/ticketing"
	ticketingApp "github.com/luxtrip/go-busline/internal/ticketing/application"
	ticketingDomain "github.com/luxtrip/go-busline/internal/ticketing/domain"
	ticketingInfra "github.com/luxtrip/go-busline/internal/ticketing/infrastructure"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
	"github.com/luxtrip/go-busline/pkg/infrastructure/redis/adapter"
	watermillLogAdapter "github.com/luxtrip/go-busline/pkg/infrastructure/watermill/adapter"
	zapAdapter "github.com/luxtrip/go-busline/pkg/infrastructure/zaplogger/adapter"
)

// Variant of the main server where every bus runs over Redis Streams,
// so command, query and event traffic survives a process restart.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger, err := zapAdapter.NewZapAppLogger()
	if err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error(ctx, "invalid configuration", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	logger := watermillLogAdapter.NewWatermillLoggerAdapter(appLogger)

	redisClient := adapter.NewRedisClient(cfg.RedisAddr)
	defer redisClient.Close()

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: redisClient,
	}, logger)
	if err != nil {
		appLogger.Error(ctx, "failed to create publisher", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	defer publisher.Close()

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        redisClient,
		ConsumerGroup: "busline_group",
		Consumer:      "busline_consumer",
	}, logger)
	if err != nil {
		appLogger.Error(ctx, "failed to create subscriber", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	defer subscriber.Close()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		appLogger.Error(ctx, "failed to connect to database", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	userRepo, err := identityInfra.NewGormUserRepository(db, appLogger)
	if err != nil {
		appLogger.Error(ctx, "failed to initialize user repository", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	catalogRepo, err := catalogInfra.NewGormCatalogRepository(db, appLogger)
	if err != nil {
		appLogger.Error(ctx, "failed to initialize catalog repository", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	ticketRepo, err := ticketingInfra.NewGormTicketRepository(db, appLogger)
	if err != nil {
		appLogger.Error(ctx, "failed to initialize ticket repository", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	tokens := identityInfra.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	registerBus := adapter.NewRedisCommandBus[pkgDomain.Command[identityApp.RegisterUserData], identityApp.RegisterUserData, identityDomain.User](publisher, subscriber, appLogger)
	authBus := adapter.NewRedisQueryBus[pkgDomain.Query[identityApp.CredentialsData], identityApp.CredentialsData, string](publisher, subscriber, appLogger)
	usersBus := adapter.NewRedisQueryBus[pkgDomain.Query[identityApp.FindUsersData], identityApp.FindUsersData, []identityDomain.User](publisher, subscriber, appLogger)
	identityEvents := adapter.NewRedisEventBus[pkgDomain.Event[string], string](publisher, appLogger)

	busQueryBus := adapter.NewRedisQueryBus[pkgDomain.Query[catalogApp.FindBusesData], catalogApp.FindBusesData, []catalogApp.BusSummary](publisher, subscriber, appLogger)
	cityQueryBus := adapter.NewRedisQueryBus[pkgDomain.Query[catalogApp.ListCitiesData], catalogApp.ListCitiesData, []catalogDomain.City](publisher, subscriber, appLogger)

	issueBus := adapter.NewRedisCommandBus[pkgDomain.Command[ticketingApp.IssueTicketData], ticketingApp.IssueTicketData, ticketingDomain.Ticket](publisher, subscriber, appLogger)
	ticketQueryBus := adapter.NewRedisQueryBus[pkgDomain.Query[ticketingApp.FindTicketsData], ticketingApp.FindTicketsData, []ticketingDomain.Ticket](publisher, subscriber, appLogger)
	seatsQueryBus := adapter.NewRedisQueryBus[pkgDomain.Query[ticketingApp.BookedSeatsData], ticketingApp.BookedSeatsData, []string](publisher, subscriber, appLogger)
	ticketingEvents := adapter.NewRedisEventBus[pkgDomain.Event[string], string](publisher, appLogger)

	identitySlice := identity.NewIdentitySlice(registerBus, authBus, usersBus, identityEvents, userRepo, tokens, appLogger)
	catalogSlice := catalog.NewCatalogSlice(busQueryBus, cityQueryBus, catalogRepo, identitySlice.RequireAuth, appLogger)
	ticketingSlice := ticketing.NewTicketingSlice(issueBus, ticketQueryBus, seatsQueryBus, ticketingEvents, ticketRepo, catalogRepo, identitySlice.RequireAuth, appLogger)

	router := chi.NewRouter()
	identitySlice.RegisterRoutes(router)
	catalogSlice.RegisterRoutes(router)
	ticketingSlice.RegisterRoutes(router)

	appLogger.Info(ctx, "server starting", map[string]interface{}{"address": cfg.HTTPAddr})
	if err := http.ListenAndServe(cfg.HTTPAddr, router); err != nil {
		appLogger.Error(ctx, "failed to start server", map[string]interface{}{"error": err})
	}
}
