package application

import (
	"github.com/luxtrip/go-busline/pkg/domain"
)

type userRegisteredEvent struct {
	data string
}

func (e userRegisteredEvent) EventName() string {
	return "UserRegistered"
}

func (e userRegisteredEvent) Payload() string {
	return e.data
}

// NewUserRegisteredEvent creates an event for a completed registration.
func NewUserRegisteredEvent(email string) domain.Event[string] {
	return userRegisteredEvent{data: email}
}
