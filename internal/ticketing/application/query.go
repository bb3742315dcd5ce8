package application

import (
	"github.com/luxtrip/go-busline/pkg/domain"
)

// FindTicketsData selects tickets by owner or by ticket id.
type FindTicketsData struct {
	UserID   *int `json:"user_id,omitempty"`
	TicketID *int `json:"ticket_id,omitempty"`
}

type findTicketsQuery struct {
	name string
	data FindTicketsData
}

func (q findTicketsQuery) QueryName() string {
	return q.name
}

func (q findTicketsQuery) Payload() FindTicketsData {
	return q.data
}

func NewTicketsForUserQuery(userID int) domain.Query[FindTicketsData] {
	return findTicketsQuery{name: "TicketsForUser", data: FindTicketsData{UserID: &userID}}
}

func NewFindTicketQuery(ticketID int) domain.Query[FindTicketsData] {
	return findTicketsQuery{name: "FindTicket", data: FindTicketsData{TicketID: &ticketID}}
}

// BookedSeatsData selects the occupied seat labels of one bus.
type BookedSeatsData struct {
	BusID int `json:"bus_id"`
}

type bookedSeatsQuery struct {
	data BookedSeatsData
}

func (q bookedSeatsQuery) QueryName() string {
	return "BookedSeats"
}

func (q bookedSeatsQuery) Payload() BookedSeatsData {
	return q.data
}

func NewBookedSeatsQuery(busID int) domain.Query[BookedSeatsData] {
	return bookedSeatsQuery{data: BookedSeatsData{BusID: busID}}
}
