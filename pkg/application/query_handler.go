package application

import (
	"context"

	"github.com/luxtrip/go-busline/pkg/domain"
)

// QueryHandler defines the interface for query handlers.
type QueryHandler[Q domain.Query[T], T any, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// QueryBus defines the interface for the query bus.
type QueryBus[Q domain.Query[D], D any, R any] interface {
	RegisterHandler(queryName string, handler QueryHandler[Q, D, R])
	Dispatch(ctx context.Context, query Q) (R, error)
}
