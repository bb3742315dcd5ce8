package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/luxtrip/go-busline/internal/catalog/domain"
)

// InMemoryCatalogRepository backs the catalog slice in tests and demos.
type InMemoryCatalogRepository struct {
	mu     sync.RWMutex
	buses  map[int]domain.Bus
	cities map[int]domain.City
}

func NewInMemoryCatalogRepository() *InMemoryCatalogRepository {
	return &InMemoryCatalogRepository{
		buses:  make(map[int]domain.Bus),
		cities: make(map[int]domain.City),
	}
}

// AddBus seeds a bus, with its route cities registered as well.
func (r *InMemoryCatalogRepository) AddBus(bus domain.Bus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buses[bus.ID] = bus
	r.cities[bus.Route.DepartureCity.ID] = bus.Route.DepartureCity
	r.cities[bus.Route.ArrivalCity.ID] = bus.Route.ArrivalCity
}

func (r *InMemoryCatalogRepository) FindBuses(ctx context.Context) ([]domain.Bus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buses := make([]domain.Bus, 0, len(r.buses))
	for _, bus := range r.buses {
		buses = append(buses, bus)
	}
	sort.Slice(buses, func(i, j int) bool { return buses[i].ID < buses[j].ID })
	return buses, nil
}

func (r *InMemoryCatalogRepository) FindBusByID(ctx context.Context, id int) (domain.Bus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bus, exists := r.buses[id]
	if !exists {
		return domain.Bus{}, domain.ErrBusNotFound
	}
	return bus, nil
}

func (r *InMemoryCatalogRepository) FindCities(ctx context.Context) ([]domain.City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cities := make([]domain.City, 0, len(r.cities))
	for _, city := range r.cities {
		cities = append(cities, city)
	}
	sort.Slice(cities, func(i, j int) bool { return cities[i].ID < cities[j].ID })
	return cities, nil
}
