package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogDomain "github.com/luxtrip/go-busline/internal/catalog/domain"
	catalogInfra "github.com/luxtrip/go-busline/internal/catalog/infrastructure"
	"github.com/luxtrip/go-busline/internal/ticketing/application"
	"github.com/luxtrip/go-busline/internal/ticketing/domain"
	"github.com/luxtrip/go-busline/internal/ticketing/infrastructure"
	pkgApp "github.com/luxtrip/go-busline/pkg/application"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
	pkgInfra "github.com/luxtrip/go-busline/pkg/infrastructure"
)

type (
	pkgEvent    = pkgDomain.Event[string]
	pkgEventBus = pkgApp.EventBus[pkgEvent, string]
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, msg string, fields map[string]interface{})  {}
func (nopLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {}
func (nopLogger) Warn(ctx context.Context, msg string, fields map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {}

type eventRecorder struct {
	mu    sync.Mutex
	codes []string
}

func (r *eventRecorder) Handle(ctx context.Context, event pkgEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, event.Payload())
	return nil
}

func seededCatalog() *catalogInfra.InMemoryCatalogRepository {
	repo := catalogInfra.NewInMemoryCatalogRepository()
	repo.AddBus(catalogDomain.Bus{
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
	return repo
}

func validRequest() application.IssueTicketData {
	return application.IssueTicketData{
		UserID:        1,
		BusID:         5,
		SeatNo:        "12A",
		TotalPrice:    150000,
		Date:          "2024-05-01",
		BusName:       "Lux Express",
		DepartureCity: "Jakarta",
		ArrivalCity:   "Bandung",
		HasAddons:     false,
	}
}

func Test_IssueTicket_Success(t *testing.T) {
	tickets := infrastructure.NewInMemoryTicketRepository()
	recorder := &eventRecorder{}
	eventBus := newTestEventBus()
	eventBus.RegisterHandler("TicketIssued", recorder)

	handler := application.NewIssueTicketHandler(eventBus, tickets, seededCatalog(), nopLogger{})

	ticket, err := handler.Handle(context.Background(), application.NewIssueTicketCommand(validRequest()))
	require.NoError(t, err)

	assert.Regexp(t, `^LUX-[A-Z0-9]{8}$`, ticket.TicketCode)
	assert.NotZero(t, ticket.ID)
	assert.Equal(t, 1, ticket.UserID)
	assert.Equal(t, 5, ticket.BusID)
	assert.Equal(t, "12A", ticket.SeatNo)
	assert.Equal(t, 150000, ticket.TotalPrice)
	assert.Equal(t, "Lux Express", ticket.BusName)
	assert.Equal(t, "Jakarta", ticket.DepartureCity)
	assert.Equal(t, "Bandung", ticket.ArrivalCity)
	assert.False(t, ticket.HasAddons)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), ticket.Date)

	assert.Equal(t, 1, tickets.Len())
	assert.Equal(t, []string{ticket.TicketCode}, recorder.codes)
}

func Test_IssueTicket_MissingFields(t *testing.T) {
	tickets := infrastructure.NewInMemoryTicketRepository()
	handler := application.NewIssueTicketHandler(newTestEventBus(), tickets, seededCatalog(), nopLogger{})

	data := validRequest()
	data.SeatNo = ""
	data.Date = ""

	_, err := handler.Handle(context.Background(), application.NewIssueTicketCommand(data))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"seat_no", "date"}, verr.Fields)
	assert.Zero(t, tickets.Accesses(), "validation failures must not touch storage")
}

func Test_IssueTicket_MalformedDate(t *testing.T) {
	tickets := infrastructure.NewInMemoryTicketRepository()
	handler := application.NewIssueTicketHandler(newTestEventBus(), tickets, seededCatalog(), nopLogger{})

	data := validRequest()
	data.Date = "01/05/2024"

	_, err := handler.Handle(context.Background(), application.NewIssueTicketCommand(data))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"date"}, verr.Fields)
	assert.Zero(t, tickets.Accesses())
}

func Test_IssueTicket_RFC3339Date(t *testing.T) {
	tickets := infrastructure.NewInMemoryTicketRepository()
	handler := application.NewIssueTicketHandler(newTestEventBus(), tickets, seededCatalog(), nopLogger{})

	data := validRequest()
	data.Date = "2024-05-01T08:00:00Z"

	ticket, err := handler.Handle(context.Background(), application.NewIssueTicketCommand(data))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), ticket.Date)
}

func Test_IssueTicket_UnknownBus(t *testing.T) {
	tickets := infrastructure.NewInMemoryTicketRepository()
	handler := application.NewIssueTicketHandler(newTestEventBus(), tickets, seededCatalog(), nopLogger{})

	data := validRequest()
	data.BusID = 9999

	_, err := handler.Handle(context.Background(), application.NewIssueTicketCommand(data))
	assert.ErrorIs(t, err, catalogDomain.ErrBusNotFound)
	assert.Equal(t, 0, tickets.Len())
}

func Test_IssueTicket_SeatTaken(t *testing.T) {
	tickets := infrastructure.NewInMemoryTicketRepository()
	handler := application.NewIssueTicketHandler(newTestEventBus(), tickets, seededCatalog(), nopLogger{})

	_, err := handler.Handle(context.Background(), application.NewIssueTicketCommand(validRequest()))
	require.NoError(t, err)

	data := validRequest()
	data.UserID = 2

	_, err = handler.Handle(context.Background(), application.NewIssueTicketCommand(data))
	assert.ErrorIs(t, err, domain.ErrSeatTaken)
	assert.Equal(t, 1, tickets.Len())
}

func Test_IssueTicket_DistinctCodes(t *testing.T) {
	tickets := infrastructure.NewInMemoryTicketRepository()
	handler := application.NewIssueTicketHandler(newTestEventBus(), tickets, seededCatalog(), nopLogger{})

	first, err := handler.Handle(context.Background(), application.NewIssueTicketCommand(validRequest()))
	require.NoError(t, err)

	data := validRequest()
	data.SeatNo = "12B"
	second, err := handler.Handle(context.Background(), application.NewIssueTicketCommand(data))
	require.NoError(t, err)

	assert.NotEqual(t, first.TicketCode, second.TicketCode)
	assert.Equal(t, 2, tickets.Len())
}

// conflictingRepo forces the first n saves to fail with a code conflict.
type conflictingRepo struct {
	*infrastructure.InMemoryTicketRepository
	conflicts int
}

func (r *conflictingRepo) Save(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	if r.conflicts > 0 {
		r.conflicts--
		return domain.Ticket{}, domain.ErrTicketCodeConflict
	}
	return r.InMemoryTicketRepository.Save(ctx, ticket)
}

func Test_IssueTicket_RetriesOnCodeConflict(t *testing.T) {
	tickets := &conflictingRepo{InMemoryTicketRepository: infrastructure.NewInMemoryTicketRepository(), conflicts: 2}
	handler := application.NewIssueTicketHandler(newTestEventBus(), tickets, seededCatalog(), nopLogger{})

	ticket, err := handler.Handle(context.Background(), application.NewIssueTicketCommand(validRequest()))
	require.NoError(t, err)
	assert.Regexp(t, `^LUX-[A-Z0-9]{8}$`, ticket.TicketCode)
	assert.Equal(t, 1, tickets.Len())
}

func Test_IssueTicket_GivesUpAfterRepeatedConflicts(t *testing.T) {
	tickets := &conflictingRepo{InMemoryTicketRepository: infrastructure.NewInMemoryTicketRepository(), conflicts: 10}
	handler := application.NewIssueTicketHandler(newTestEventBus(), tickets, seededCatalog(), nopLogger{})

	_, err := handler.Handle(context.Background(), application.NewIssueTicketCommand(validRequest()))
	assert.ErrorIs(t, err, domain.ErrTicketCodeConflict)
}

func Test_FindTickets_ByUser(t *testing.T) {
	tickets := infrastructure.NewInMemoryTicketRepository()
	issue := application.NewIssueTicketHandler(newTestEventBus(), tickets, seededCatalog(), nopLogger{})

	for _, seat := range []string{"1A", "1B"} {
		data := validRequest()
		data.SeatNo = seat
		_, err := issue.Handle(context.Background(), application.NewIssueTicketCommand(data))
		require.NoError(t, err)
	}

	handler := application.NewFindTicketsHandler(tickets, nopLogger{})

	found, err := handler.Handle(context.Background(), application.NewTicketsForUserQuery(1))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Greater(t, found[0].ID, found[1].ID, "newest ticket first")

	found, err = handler.Handle(context.Background(), application.NewTicketsForUserQuery(42))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func Test_FindTickets_ByID(t *testing.T) {
	tickets := infrastructure.NewInMemoryTicketRepository()
	issue := application.NewIssueTicketHandler(newTestEventBus(), tickets, seededCatalog(), nopLogger{})

	ticket, err := issue.Handle(context.Background(), application.NewIssueTicketCommand(validRequest()))
	require.NoError(t, err)

	handler := application.NewFindTicketsHandler(tickets, nopLogger{})

	found, err := handler.Handle(context.Background(), application.NewFindTicketQuery(ticket.ID))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ticket, found[0])

	_, err = handler.Handle(context.Background(), application.NewFindTicketQuery(9999))
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func Test_BookedSeats(t *testing.T) {
	tickets := infrastructure.NewInMemoryTicketRepository()
	issue := application.NewIssueTicketHandler(newTestEventBus(), tickets, seededCatalog(), nopLogger{})

	for _, seat := range []string{"2B", "1A"} {
		data := validRequest()
		data.SeatNo = seat
		_, err := issue.Handle(context.Background(), application.NewIssueTicketCommand(data))
		require.NoError(t, err)
	}

	handler := application.NewBookedSeatsHandler(tickets, nopLogger{})

	seats, err := handler.Handle(context.Background(), application.NewBookedSeatsQuery(5))
	require.NoError(t, err)
	assert.Equal(t, []string{"1A", "2B"}, seats)

	seats, err = handler.Handle(context.Background(), application.NewBookedSeatsQuery(6))
	require.NoError(t, err)
	assert.Empty(t, seats)
}

func Test_IssueTicket_CancelledContext(t *testing.T) {
	tickets := infrastructure.NewInMemoryTicketRepository()
	handler := application.NewIssueTicketHandler(newTestEventBus(), tickets, seededCatalog(), nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := handler.Handle(ctx, application.NewIssueTicketCommand(validRequest()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, tickets.Accesses())
}

func newTestEventBus() pkgEventBus {
	return pkgInfra.NewSimpleEventBus[pkgEvent, string](nopLogger{})
}
