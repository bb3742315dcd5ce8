package infrastructure

import (
	"context"
	"errors"
	"sync"

	"github.com/luxtrip/go-busline/pkg/application"
	"github.com/luxtrip/go-busline/pkg/domain"
)

type simpleCommandBus[C domain.Command[D], D any, R any] struct {
	handlers map[string]application.CommandHandler[C, D, R]
	mu       sync.RWMutex
}

func NewSimpleCommandBus[C domain.Command[D], D any, R any]() application.CommandBus[C, D, R] {
	return &simpleCommandBus[C, D, R]{
		handlers: make(map[string]application.CommandHandler[C, D, R]),
	}
}

func (bus *simpleCommandBus[C, D, R]) RegisterHandler(commandName string, handler application.CommandHandler[C, D, R]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[commandName] = handler
}

func (bus *simpleCommandBus[C, D, R]) Dispatch(ctx context.Context, command C) (R, error) {
	bus.mu.RLock()
	handler, found := bus.handlers[command.CommandName()]
	bus.mu.RUnlock()

	var zero R
	if !found {
		return zero, errors.New("no handler registered for command")
	}

	resultChan := make(chan R, 1)
	errChan := make(chan error, 1)

	go func() {
		result, err := handler.Handle(ctx, command)
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- result
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case result := <-resultChan:
		return result, nil
	case err := <-errChan:
		return zero, err
	}
}
