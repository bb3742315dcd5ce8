package domain

import (
	"context"
	"time"
)

// Ticket is the system of record for seat occupancy. The bus name and
// city names are snapshots taken at issuance so later catalog edits do
// not rewrite history. Rows are never updated or deleted.
type Ticket struct {
	ID            int       `json:"ticket_id" gorm:"column:ticket_id;primaryKey"`
	UserID        int       `json:"user_id"`
	BusID         int       `json:"bus_id" gorm:"uniqueIndex:idx_bus_seat"`
	SeatNo        string    `json:"seat_no" gorm:"column:seat_no;uniqueIndex:idx_bus_seat"`
	TotalPrice    int       `json:"total_price"`
	TicketCode    string    `json:"ticket_code" gorm:"uniqueIndex:idx_ticket_code"`
	Date          time.Time `json:"date"`
	BusName       string    `json:"bus_name"`
	DepartureCity string    `json:"departure_city"`
	ArrivalCity   string    `json:"arrival_city"`
	HasAddons     bool      `json:"has_addons"`
}

// TicketRepository is the append-only ticket ledger. Save surfaces
// ErrTicketCodeConflict and ErrSeatTaken for the two unique indexes so
// the issuance workflow can tell a retryable code collision from a
// genuinely taken seat.
type TicketRepository interface {
	Save(ctx context.Context, ticket Ticket) (Ticket, error)
	FindByUserID(ctx context.Context, userID int) ([]Ticket, error)
	FindByID(ctx context.Context, id int) (Ticket, error)
	FindSeatsByBusID(ctx context.Context, busID int) ([]string, error)
}
