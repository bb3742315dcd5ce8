package application

import (
	"github.com/luxtrip/go-busline/pkg/domain"
)

// RegisterUserData carries the fields needed to register a new user.
type RegisterUserData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerUserCommand struct {
	data RegisterUserData
}

func (c registerUserCommand) CommandName() string {
	return "RegisterUser"
}

func (c registerUserCommand) Payload() RegisterUserData {
	return c.data
}

// NewRegisterUserCommand creates a command to register a new user.
func NewRegisterUserCommand(data RegisterUserData) domain.Command[RegisterUserData] {
	return registerUserCommand{data: data}
}
