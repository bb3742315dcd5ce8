package domain

import (
	"context"
	"errors"
	"time"
)

// City is part of the read-only reference data the booking flow joins
// against. The admin flows that manage it are out of scope here.
type City struct {
	ID   int    `json:"city_id" gorm:"column:city_id;primaryKey"`
	Name string `json:"city_name" gorm:"column:city_name"`
}

type Route struct {
	ID              int  `json:"route_id" gorm:"column:route_id;primaryKey"`
	DepartureCityID int  `json:"departure_city_id"`
	ArrivalCityID   int  `json:"arrival_city_id"`
	DepartureCity   City `json:"departure_city" gorm:"foreignKey:DepartureCityID"`
	ArrivalCity     City `json:"arrival_city" gorm:"foreignKey:ArrivalCityID"`
}

type Bus struct {
	ID             int       `json:"bus_id" gorm:"column:bus_id;primaryKey"`
	Name           string    `json:"bus_name" gorm:"column:bus_name"`
	DepartureTime  time.Time `json:"departure_time"`
	Price          int       `json:"price"`
	SeatCapacity   int       `json:"seat_capacity"`
	AvailableSeats int       `json:"available_seats"`
	RouteID        int       `json:"route_id"`
	Route          Route     `json:"route" gorm:"foreignKey:RouteID"`
}

var ErrBusNotFound = errors.New("bus not found")

// CatalogRepository reads the bus/route/city reference data. Bus lookups
// return routes with both city names populated.
type CatalogRepository interface {
	FindBuses(ctx context.Context) ([]Bus, error)
	FindBusByID(ctx context.Context, id int) (Bus, error)
	FindCities(ctx context.Context) ([]City, error)
}
