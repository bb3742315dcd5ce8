package infrastructure

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/luxtrip/go-busline/internal/ticketing/domain"
)

// InMemoryTicketRepository backs the ticketing slice in tests and demos.
// It enforces the same uniqueness rules as the relational ledger and
// counts accesses so tests can assert that failed preconditions never
// touch storage.
type InMemoryTicketRepository struct {
	mu       sync.RWMutex
	data     map[int]domain.Ticket
	nextID   int
	accesses atomic.Int64
}

func NewInMemoryTicketRepository() *InMemoryTicketRepository {
	return &InMemoryTicketRepository{
		data:   make(map[int]domain.Ticket),
		nextID: 1,
	}
}

func (r *InMemoryTicketRepository) Save(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	r.accesses.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.data {
		if existing.TicketCode == ticket.TicketCode {
			return domain.Ticket{}, domain.ErrTicketCodeConflict
		}
		if existing.BusID == ticket.BusID && existing.SeatNo == ticket.SeatNo {
			return domain.Ticket{}, domain.ErrSeatTaken
		}
	}

	ticket.ID = r.nextID
	r.nextID++
	r.data[ticket.ID] = ticket

	return ticket, nil
}

func (r *InMemoryTicketRepository) FindByUserID(ctx context.Context, userID int) ([]domain.Ticket, error) {
	r.accesses.Add(1)
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tickets []domain.Ticket
	for _, ticket := range r.data {
		if ticket.UserID == userID {
			tickets = append(tickets, ticket)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID > tickets[j].ID })
	return tickets, nil
}

func (r *InMemoryTicketRepository) FindByID(ctx context.Context, id int) (domain.Ticket, error) {
	r.accesses.Add(1)
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, exists := r.data[id]
	if !exists {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return ticket, nil
}

func (r *InMemoryTicketRepository) FindSeatsByBusID(ctx context.Context, busID int) ([]string, error) {
	r.accesses.Add(1)
	r.mu.RLock()
	defer r.mu.RUnlock()

	var seats []string
	for _, ticket := range r.data {
		if ticket.BusID == busID {
			seats = append(seats, ticket.SeatNo)
		}
	}
	sort.Strings(seats)
	return seats, nil
}

// Accesses reports how many repository calls have been made.
func (r *InMemoryTicketRepository) Accesses() int64 {
	return r.accesses.Load()
}

// ResetAccesses zeroes the access counter, so tests can scope it to the
// calls they care about.
func (r *InMemoryTicketRepository) ResetAccesses() {
	r.accesses.Store(0)
}

// Len reports how many tickets the ledger holds.
func (r *InMemoryTicketRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
