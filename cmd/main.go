package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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
	pkgApp "github.com/luxtrip/go-busline/pkg/application"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
	pkgInfra "github.com/luxtrip/go-busline/pkg/infrastructure"
	zapAdapter "github.com/luxtrip/go-busline/pkg/infrastructure/zaplogger/adapter"
)

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

	registerBus := pkgInfra.NewSimpleCommandBus[pkgDomain.Command[identityApp.RegisterUserData], identityApp.RegisterUserData, identityDomain.User]()
	authBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[identityApp.CredentialsData], identityApp.CredentialsData, string]()
	usersBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[identityApp.FindUsersData], identityApp.FindUsersData, []identityDomain.User]()
	identityEvents := pkgInfra.NewSimpleEventBus[pkgDomain.Event[string], string](appLogger)

	busQueryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[catalogApp.FindBusesData], catalogApp.FindBusesData, []catalogApp.BusSummary]()
	cityQueryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[catalogApp.ListCitiesData], catalogApp.ListCitiesData, []catalogDomain.City]()

	issueBus := pkgInfra.NewSimpleCommandBus[pkgDomain.Command[ticketingApp.IssueTicketData], ticketingApp.IssueTicketData, ticketingDomain.Ticket]()
	ticketQueryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[ticketingApp.FindTicketsData], ticketingApp.FindTicketsData, []ticketingDomain.Ticket]()
	seatsQueryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[ticketingApp.BookedSeatsData], ticketingApp.BookedSeatsData, []string]()
	ticketingEvents := pkgInfra.NewSimpleEventBus[pkgDomain.Event[string], string](appLogger)

	identitySlice := identity.NewIdentitySlice(registerBus, authBus, usersBus, identityEvents, userRepo, tokens, appLogger)
	catalogSlice := catalog.NewCatalogSlice(busQueryBus, cityQueryBus, catalogRepo, identitySlice.RequireAuth, appLogger)
	ticketingSlice := ticketing.NewTicketingSlice(issueBus, ticketQueryBus, seatsQueryBus, ticketingEvents, ticketRepo, catalogRepo, identitySlice.RequireAuth, appLogger)

	router := chi.NewRouter()
	router.Use(requestLogger(appLogger))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		appLogger.Info(r.Context(), "health check request received", nil)
		w.Write([]byte("running..."))
	})

	identitySlice.RegisterRoutes(router)
	catalogSlice.RegisterRoutes(router)
	ticketingSlice.RegisterRoutes(router)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		appLogger.Info(ctx, "signal received", map[string]interface{}{"signal": sig})
		cancel()
	}()

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		appLogger.Info(ctx, "server starting", map[string]interface{}{"address": cfg.HTTPAddr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error(ctx, "failed to start server", map[string]interface{}{"error": err})
		}
	}()

	<-ctx.Done()
	appLogger.Info(context.Background(), "shutting down server", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(context.Background(), "failed to shut down server", map[string]interface{}{"error": err})
	}

	appLogger.Info(context.Background(), "server stopped", nil)
}

func requestLogger(logger pkgApp.AppLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), "requestID", pkgInfra.GenerateUUID())
			logger.Info(ctx, "incoming request", map[string]interface{}{
				"method": r.Method,
				"url":    r.URL.Path,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
