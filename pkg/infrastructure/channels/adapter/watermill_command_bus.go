package adapter

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/luxtrip/go-busline/pkg/application"
	"github.com/luxtrip/go-busline/pkg/domain"
)

type WatermillCommandBus[C domain.Command[T], T any, R any] struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	handlers   map[string]application.CommandHandler[C, T, R]
	mu         sync.RWMutex
	logger     application.AppLogger
}

func NewWatermillCommandBus[C domain.Command[T], T any, R any](publisher message.Publisher, subscriber message.Subscriber, logger application.AppLogger) *WatermillCommandBus[C, T, R] {
	return &WatermillCommandBus[C, T, R]{
		publisher:  publisher,
		subscriber: subscriber,
		handlers:   make(map[string]application.CommandHandler[C, T, R]),
		logger:     logger,
	}
}

func (bus *WatermillCommandBus[C, T, R]) RegisterHandler(commandName string, handler application.CommandHandler[C, T, R]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[commandName] = handler

	go func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		messages, err := bus.subscriber.Subscribe(ctx, commandName)
		if err != nil {
			bus.logger.Error(ctx, "error subscribing to command", map[string]interface{}{
				"command_name": commandName,
				"error":        err,
			})
			return
		}

		for msg := range messages {
			go func(msg *message.Message) {
				var payload T
				if err := json.Unmarshal(msg.Payload, &payload); err != nil {
					bus.logger.Error(ctx, "error unmarshalling command payload", map[string]interface{}{
						"command_name": commandName,
						"error":        err,
					})
					msg.Nack()
					return
				}

				command := &dynamicCommand[T]{
					commandName: commandName,
					payload:     payload,
				}

				typedCommand, ok := interface{}(command).(C)
				if !ok {
					bus.logger.Error(ctx, "error asserting command type", map[string]interface{}{
						"command_name": commandName,
					})
					msg.Nack()
					return
				}

				result, err := bus.handlers[commandName].Handle(ctx, typedCommand)
				if err != nil {
					bus.logger.Error(ctx, "error handling command", map[string]interface{}{
						"command_name": commandName,
						"error":        err,
					})
					msg.Nack()
					return
				}

				resultPayload, err := json.Marshal(result)
				if err != nil {
					bus.logger.Error(ctx, "error marshalling command result", map[string]interface{}{
						"command_name": commandName,
						"error":        err,
					})
					msg.Nack()
					return
				}

				resultMsg := message.NewMessage(watermill.NewUUID(), resultPayload)
				if err := bus.publisher.Publish(commandName+"_result", resultMsg); err != nil {
					bus.logger.Error(ctx, "error publishing command result", map[string]interface{}{
						"command_name": commandName,
						"error":        err,
					})
					msg.Nack()
					return
				}

				bus.logger.Info(ctx, "command handled", map[string]interface{}{
					"command_name": commandName,
				})
				msg.Ack()
			}(msg)
		}
	}()
}

func (bus *WatermillCommandBus[C, T, R]) Dispatch(ctx context.Context, command C) (R, error) {
	var zero R

	payload, err := json.Marshal(command.Payload())
	if err != nil {
		bus.logger.Error(ctx, "error marshalling command payload", map[string]interface{}{
			"command_name": command.CommandName(),
			"error":        err,
		})
		return zero, err
	}

	resultMessages, err := bus.subscriber.Subscribe(ctx, command.CommandName()+"_result")
	if err != nil {
		bus.logger.Error(ctx, "error subscribing to command result", map[string]interface{}{
			"command_name": command.CommandName(),
			"error":        err,
		})
		return zero, err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := bus.publisher.Publish(command.CommandName(), msg); err != nil {
		bus.logger.Error(ctx, "error publishing command", map[string]interface{}{
			"command_name": command.CommandName(),
			"error":        err,
		})
		return zero, err
	}

	select {
	case resultMsg := <-resultMessages:
		var result R
		if err := json.Unmarshal(resultMsg.Payload, &result); err != nil {
			bus.logger.Error(ctx, "error unmarshalling command result", map[string]interface{}{
				"command_name": command.CommandName(),
				"error":        err,
			})
			return zero, err
		}
		resultMsg.Ack()
		return result, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

type dynamicCommand[T any] struct {
	commandName string
	payload     T
}

func (c *dynamicCommand[T]) CommandName() string {
	return c.commandName
}

func (c *dynamicCommand[T]) Payload() T {
	return c.payload
}
