package application

import (
	"github.com/luxtrip/go-busline/pkg/domain"
)

type ticketIssuedEvent struct {
	data string
}

func (e ticketIssuedEvent) EventName() string {
	return "TicketIssued"
}

func (e ticketIssuedEvent) Payload() string {
	return e.data
}

// NewTicketIssuedEvent creates an event for a committed ticket,
// identified by its ticket code.
func NewTicketIssuedEvent(ticketCode string) domain.Event[string] {
	return ticketIssuedEvent{data: ticketCode}
}
