package domain

// Query represents a read request against the system.
type Query[T any] interface {
	QueryName() string
	Payload() T
}
