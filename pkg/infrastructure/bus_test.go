package infrastructure

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxtrip/go-busline/pkg/domain"
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, msg string, fields map[string]interface{})  {}
func (nopLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {}
func (nopLogger) Warn(ctx context.Context, msg string, fields map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {}

type echoCommand struct{ payload string }

func (c echoCommand) CommandName() string { return "Echo" }
func (c echoCommand) Payload() string     { return c.payload }

type echoHandler struct {
	err   error
	delay time.Duration
}

func (h echoHandler) Handle(ctx context.Context, command domain.Command[string]) (string, error) {
	if h.delay > 0 {
		select {
		case <-time.After(h.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if h.err != nil {
		return "", h.err
	}
	return "echo: " + command.Payload(), nil
}

func Test_SimpleCommandBus_Dispatch(t *testing.T) {
	bus := NewSimpleCommandBus[domain.Command[string], string, string]()
	bus.RegisterHandler("Echo", echoHandler{})

	result, err := bus.Dispatch(context.Background(), echoCommand{payload: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", result)
}

func Test_SimpleCommandBus_NoHandler(t *testing.T) {
	bus := NewSimpleCommandBus[domain.Command[string], string, string]()

	_, err := bus.Dispatch(context.Background(), echoCommand{payload: "hi"})
	assert.EqualError(t, err, "no handler registered for command")
}

func Test_SimpleCommandBus_HandlerError(t *testing.T) {
	handlerErr := errors.New("boom")
	bus := NewSimpleCommandBus[domain.Command[string], string, string]()
	bus.RegisterHandler("Echo", echoHandler{err: handlerErr})

	_, err := bus.Dispatch(context.Background(), echoCommand{payload: "hi"})
	assert.ErrorIs(t, err, handlerErr)
}

func Test_SimpleCommandBus_ContextTimeout(t *testing.T) {
	bus := NewSimpleCommandBus[domain.Command[string], string, string]()
	bus.RegisterHandler("Echo", echoHandler{delay: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := bus.Dispatch(ctx, echoCommand{payload: "hi"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type lengthQuery struct{ payload string }

func (q lengthQuery) QueryName() string { return "Length" }
func (q lengthQuery) Payload() string   { return q.payload }

type lengthHandler struct{}

func (lengthHandler) Handle(ctx context.Context, query domain.Query[string]) (int, error) {
	return len(query.Payload()), nil
}

func Test_SimpleQueryBus_Dispatch(t *testing.T) {
	bus := NewSimpleQueryBus[domain.Query[string], string, int]()
	bus.RegisterHandler("Length", lengthHandler{})

	result, err := bus.Dispatch(context.Background(), lengthQuery{payload: "four"})
	require.NoError(t, err)
	assert.Equal(t, 4, result)
}

func Test_SimpleQueryBus_NoHandler(t *testing.T) {
	bus := NewSimpleQueryBus[domain.Query[string], string, int]()

	_, err := bus.Dispatch(context.Background(), lengthQuery{payload: "four"})
	assert.EqualError(t, err, "no handler registered for query")
}

type pingEvent struct{ payload string }

func (e pingEvent) EventName() string { return "Ping" }
func (e pingEvent) Payload() string   { return e.payload }

type recordingHandler struct {
	mu       sync.Mutex
	payloads []string
	err      error
}

func (h *recordingHandler) Handle(ctx context.Context, event domain.Event[string]) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.payloads = append(h.payloads, event.Payload())
	return h.err
}

func Test_SimpleEventBus_FanOut(t *testing.T) {
	bus := NewSimpleEventBus[domain.Event[string], string](nopLogger{})
	first := &recordingHandler{}
	second := &recordingHandler{}
	bus.RegisterHandler("Ping", first)
	bus.RegisterHandler("Ping", second)

	err := bus.Publish(context.Background(), pingEvent{payload: "hello"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, first.payloads)
	assert.Equal(t, []string{"hello"}, second.payloads)
}

func Test_SimpleEventBus_NoHandler(t *testing.T) {
	bus := NewSimpleEventBus[domain.Event[string], string](nopLogger{})

	err := bus.Publish(context.Background(), pingEvent{payload: "hello"})
	assert.NoError(t, err)
}

func Test_SimpleEventBus_HandlerError(t *testing.T) {
	bus := NewSimpleEventBus[domain.Event[string], string](nopLogger{})
	bus.RegisterHandler("Ping", &recordingHandler{err: errors.New("boom")})

	err := bus.Publish(context.Background(), pingEvent{payload: "hello"})
	assert.Error(t, err)
}
