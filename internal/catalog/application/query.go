package application

import (
	"time"

	"github.com/luxtrip/go-busline/pkg/domain"
)

// FindBusesData selects buses. A nil BusID means all buses.
type FindBusesData struct {
	BusID *int `json:"bus_id,omitempty"`
}

type findBusesQuery struct {
	name string
	data FindBusesData
}

func (q findBusesQuery) QueryName() string {
	return q.name
}

func (q findBusesQuery) Payload() FindBusesData {
	return q.data
}

func NewListBusesQuery() domain.Query[FindBusesData] {
	return findBusesQuery{name: "ListBuses"}
}

func NewFindBusQuery(busID int) domain.Query[FindBusesData] {
	return findBusesQuery{name: "FindBus", data: FindBusesData{BusID: &busID}}
}

// BusSummary is the display shape for a bus, with the route's city names
// flattened in.
type BusSummary struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	DepartureTime  time.Time `json:"departureTime"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	Price          int       `json:"price"`
	AvailableSeats int       `json:"available_seat"`
	SeatCapacity   int       `json:"seat_capacity"`
}

// ListCitiesData is the (empty) payload of the city listing query.
type ListCitiesData struct{}

type listCitiesQuery struct {
	data ListCitiesData
}

func (q listCitiesQuery) QueryName() string {
	return "ListCities"
}

func (q listCitiesQuery) Payload() ListCitiesData {
	return q.data
}

func NewListCitiesQuery() domain.Query[ListCitiesData] {
	return listCitiesQuery{}
}
