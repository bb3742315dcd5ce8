package infrastructure_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxtrip/go-busline/internal/catalog"
	catalogApp "github.com/luxtrip/go-busline/internal/catalog/application"
	catalogDomain "github.com/luxtrip/go-busline/internal/catalog/domain"
	catalogInfra "github.com/luxtrip/go-busline/internal/catalog/infrastructure"
	"github.com/luxtrip/go-busline/internal/identity"
	identityApp "github.com/luxtrip/go-busline/internal/identity/application"
	identityDomain "github.com/luxtrip/go-busline/internal/identity/domain"
	identityInfra "github.com/luxtrip/go-busline/internal/identity/infrastructure"
	"github.com/luxtrip/go-busline/internal/ticketing"
	ticketingApp "github.com/luxtrip/go-busline/internal/ticketing/application"
	ticketingDomain "github.com/luxtrip/go-busline/internal/ticketing/domain"
	"github.com/luxtrip/go-busline/internal/ticketing/infrastructure"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
	pkgInfra "github.com/luxtrip/go-busline/pkg/infrastructure"
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, msg string, fields map[string]interface{})  {}
func (nopLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {}
func (nopLogger) Warn(ctx context.Context, msg string, fields map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {}

type testApp struct {
	router  *chi.Mux
	tickets *infrastructure.InMemoryTicketRepository
	token   string
}

// newTestApp wires the three slices over in-memory storage, registers a
// user and returns a valid bearer token for it.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := nopLogger{}

	userRepo := identityInfra.NewInMemoryUserRepository()
	ticketRepo := infrastructure.NewInMemoryTicketRepository()
	catalogRepo := catalogInfra.NewInMemoryCatalogRepository()
	catalogRepo.AddBus(catalogDomain.Bus{
		ID:             5,
		Name:           "Lux Express",
		DepartureTime:  time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
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

	tokens := identityInfra.NewJWTManager([]byte("test-secret"), time.Hour)

	registerBus := pkgInfra.NewSimpleCommandBus[pkgDomain.Command[identityApp.RegisterUserData], identityApp.RegisterUserData, identityDomain.User]()
	authBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[identityApp.CredentialsData], identityApp.CredentialsData, string]()
	usersBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[identityApp.FindUsersData], identityApp.FindUsersData, []identityDomain.User]()
	identityEvents := pkgInfra.NewSimpleEventBus[pkgDomain.Event[string], string](logger)

	busQueryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[catalogApp.FindBusesData], catalogApp.FindBusesData, []catalogApp.BusSummary]()
	cityQueryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[catalogApp.ListCitiesData], catalogApp.ListCitiesData, []catalogDomain.City]()

	issueBus := pkgInfra.NewSimpleCommandBus[pkgDomain.Command[ticketingApp.IssueTicketData], ticketingApp.IssueTicketData, ticketingDomain.Ticket]()
	ticketQueryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[ticketingApp.FindTicketsData], ticketingApp.FindTicketsData, []ticketingDomain.Ticket]()
	seatsQueryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[ticketingApp.BookedSeatsData], ticketingApp.BookedSeatsData, []string]()
	ticketingEvents := pkgInfra.NewSimpleEventBus[pkgDomain.Event[string], string](logger)

	identitySlice := identity.NewIdentitySlice(registerBus, authBus, usersBus, identityEvents, userRepo, tokens, logger)
	catalogSlice := catalog.NewCatalogSlice(busQueryBus, cityQueryBus, catalogRepo, identitySlice.RequireAuth, logger)
	ticketingSlice := ticketing.NewTicketingSlice(issueBus, ticketQueryBus, seatsQueryBus, ticketingEvents, ticketRepo, catalogRepo, identitySlice.RequireAuth, logger)

	router := chi.NewRouter()
	identitySlice.RegisterRoutes(router)
	catalogSlice.RegisterRoutes(router)
	ticketingSlice.RegisterRoutes(router)

	app := &testApp{router: router, tickets: ticketRepo}

	rec := app.request(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Jane Rider",
		"email":    "jane@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "jane@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var login map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))
	require.NotEmpty(t, login["token"])
	app.token = login["token"]

	app.tickets.ResetAccesses()
	return app
}

func (a *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func validBooking() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        1,
		"bus_id":         5,
		"seat_no":        "12A",
		"total_price":    150000,
		"date":           "2024-05-01",
		"bus_name":       "Lux Express",
		"departure_city": "Jakarta",
		"arrival_city":   "Bandung",
		"has_addons":     false,
	}
}

func Test_IssueTicket_RequiresAuth(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/bus/ticket", "", validBooking())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, app.tickets.Accesses(), "rejected requests must not reach storage")

	rec = app.request(t, http.MethodPost, "/api/bus/ticket", "not-a-token", validBooking())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, app.tickets.Accesses())
}

func Test_IssueTicket_Created(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/bus/ticket", app.token, validBooking())
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Ticket  ticketingDomain.Ticket `json:"ticket"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "Ticket created successfully", body.Message)
	assert.Regexp(t, `^LUX-[A-Z0-9]{8}$`, body.Ticket.TicketCode)
	assert.Equal(t, "12A", body.Ticket.SeatNo)
	assert.Equal(t, 1, app.tickets.Len())
}

func Test_IssueTicket_DeprecatedAlias(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/bus/book-ticket", app.token, validBooking())
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func Test_IssueTicket_MissingFields(t *testing.T) {
	app := newTestApp(t)

	booking := validBooking()
	delete(booking, "seat_no")
	delete(booking, "date")

	rec := app.request(t, http.MethodPost, "/api/bus/ticket", app.token, booking)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Success       bool     `json:"success"`
		MissingFields []string `json:"missing_fields"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, []string{"seat_no", "date"}, body.MissingFields)
	assert.Equal(t, 0, app.tickets.Len())
}

func Test_IssueTicket_UnknownBus(t *testing.T) {
	app := newTestApp(t)

	booking := validBooking()
	booking["bus_id"] = 9999

	rec := app.request(t, http.MethodPost, "/api/bus/ticket", app.token, booking)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, app.tickets.Len())
}

func Test_IssueTicket_SeatConflict(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/bus/ticket", app.token, validBooking())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, http.MethodPost, "/api/bus/ticket", app.token, validBooking())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, app.tickets.Len())
}

func Test_TicketsForUser(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/bus/tickets/1", app.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = app.request(t, http.MethodPost, "/api/bus/ticket", app.token, validBooking())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, http.MethodGet, "/api/bus/tickets/1", app.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tickets []ticketingDomain.Ticket
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tickets))
	require.Len(t, tickets, 1)
	assert.Equal(t, "12A", tickets[0].SeatNo)
}

func Test_GetTicket(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/bus/ticket", app.token, validBooking())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, http.MethodGet, "/api/bus/ticket/1", app.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ticket ticketingDomain.Ticket
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ticket))
	assert.Equal(t, 1, ticket.ID)

	rec = app.request(t, http.MethodGet, "/api/bus/ticket/9999", app.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_BookedSeats(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/bus/ticket", app.token, validBooking())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, http.MethodGet, "/api/bus/buses/5/seat", app.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bookedSeats":["12A"]}`, rec.Body.String())

	rec = app.request(t, http.MethodGet, "/api/bus/buses/6/seat", app.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bookedSeats":[]}`, rec.Body.String())
}
