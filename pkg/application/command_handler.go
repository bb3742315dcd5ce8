package application

import (
	"context"

	"github.com/luxtrip/go-busline/pkg/domain"
)

// CommandHandler defines the interface for command handlers. Handlers
// return the result of the state change so callers can echo the created
// resource back to the client.
type CommandHandler[C domain.Command[T], T any, R any] interface {
	Handle(ctx context.Context, command C) (R, error)
}

// CommandBus defines the interface for the command bus.
type CommandBus[C domain.Command[T], T any, R any] interface {
	RegisterHandler(commandName string, handler CommandHandler[C, T, R])
	Dispatch(ctx context.Context, command C) (R, error)
}
