package application

import (
	"github.com/luxtrip/go-busline/pkg/domain"
)

// IssueTicketData carries the booking request. All fields except
// HasAddons are mandatory; Date must be an ISO date (2006-01-02) or an
// RFC 3339 timestamp.
type IssueTicketData struct {
	UserID        int    `json:"user_id"`
	BusID         int    `json:"bus_id"`
	SeatNo        string `json:"seat_no"`
	TotalPrice    int    `json:"total_price"`
	Date          string `json:"date"`
	BusName       string `json:"bus_name"`
	DepartureCity string `json:"departure_city"`
	ArrivalCity   string `json:"arrival_city"`
	HasAddons     bool   `json:"has_addons"`
}

type issueTicketCommand struct {
	data IssueTicketData
}

func (c issueTicketCommand) CommandName() string {
	return "IssueTicket"
}

func (c issueTicketCommand) Payload() IssueTicketData {
	return c.data
}

// NewIssueTicketCommand creates a command to issue a ticket.
func NewIssueTicketCommand(data IssueTicketData) domain.Command[IssueTicketData] {
	return issueTicketCommand{data: data}
}
