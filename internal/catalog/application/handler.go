package application

import (
	"context"

	"github.com/luxtrip/go-busline/internal/catalog/domain"
	pkgApp "github.com/luxtrip/go-busline/pkg/application"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
)

type findBusesHandler struct {
	repository domain.CatalogRepository
	logger     pkgApp.AppLogger
}

func (h *findBusesHandler) Handle(ctx context.Context, query pkgDomain.Query[FindBusesData]) ([]BusSummary, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	data := query.Payload()

	if data.BusID != nil {
		bus, err := h.repository.FindBusByID(ctx, *data.BusID)
		if err != nil {
			if err == domain.ErrBusNotFound {
				pkgApp.LogWarn(ctx, h.logger, "bus not found", map[string]interface{}{
					"bus_id": *data.BusID,
				})
			} else {
				pkgApp.LogError(ctx, h.logger, "error finding bus", err, map[string]interface{}{
					"bus_id": *data.BusID,
				})
			}
			return nil, err
		}
		return []BusSummary{summarize(bus)}, nil
	}

	buses, err := h.repository.FindBuses(ctx)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "error fetching buses", err, nil)
		return nil, err
	}

	summaries := make([]BusSummary, 0, len(buses))
	for _, bus := range buses {
		summaries = append(summaries, summarize(bus))
	}

	pkgApp.LogInfo(ctx, h.logger, "fetched all buses", map[string]interface{}{
		"count": len(summaries),
	})
	return summaries, nil
}

func summarize(bus domain.Bus) BusSummary {
	return BusSummary{
		ID:             bus.ID,
		Name:           bus.Name,
		DepartureTime:  bus.DepartureTime,
		Origin:         bus.Route.DepartureCity.Name,
		Destination:    bus.Route.ArrivalCity.Name,
		Price:          bus.Price,
		AvailableSeats: bus.AvailableSeats,
		SeatCapacity:   bus.SeatCapacity,
	}
}

func NewFindBusesHandler(repo domain.CatalogRepository, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FindBusesData], FindBusesData, []BusSummary] {
	return &findBusesHandler{
		repository: repo,
		logger:     logger,
	}
}

type listCitiesHandler struct {
	repository domain.CatalogRepository
	logger     pkgApp.AppLogger
}

func (h *listCitiesHandler) Handle(ctx context.Context, query pkgDomain.Query[ListCitiesData]) ([]domain.City, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cities, err := h.repository.FindCities(ctx)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "error fetching cities", err, nil)
		return nil, err
	}

	pkgApp.LogInfo(ctx, h.logger, "fetched all cities", map[string]interface{}{
		"count": len(cities),
	})
	return cities, nil
}

func NewListCitiesHandler(repo domain.CatalogRepository, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[ListCitiesData], ListCitiesData, []domain.City] {
	return &listCitiesHandler{
		repository: repo,
		logger:     logger,
	}
}
