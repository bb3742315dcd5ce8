package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luxtrip/go-busline/internal/catalog/application"
	"github.com/luxtrip/go-busline/internal/catalog/domain"
	"github.com/luxtrip/go-busline/internal/catalog/infrastructure"
	pkgApp "github.com/luxtrip/go-busline/pkg/application"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
)

type CatalogSlice struct {
	httpHandler *infrastructure.CatalogHTTPHandler
	requireAuth func(http.Handler) http.Handler
}

func NewCatalogSlice(
	busQueryBus pkgApp.QueryBus[pkgDomain.Query[application.FindBusesData], application.FindBusesData, []application.BusSummary],
	cityQueryBus pkgApp.QueryBus[pkgDomain.Query[application.ListCitiesData], application.ListCitiesData, []domain.City],
	repository domain.CatalogRepository,
	requireAuth func(http.Handler) http.Handler,
	logger pkgApp.AppLogger,
) *CatalogSlice {
	busHandler := application.NewFindBusesHandler(repository, logger)
	busQueryBus.RegisterHandler("ListBuses", busHandler)
	busQueryBus.RegisterHandler("FindBus", busHandler)
	cityQueryBus.RegisterHandler("ListCities", application.NewListCitiesHandler(repository, logger))

	return &CatalogSlice{
		httpHandler: infrastructure.NewCatalogHTTPHandler(busQueryBus, cityQueryBus),
		requireAuth: requireAuth,
	}
}

func (s *CatalogSlice) RegisterRoutes(router *chi.Mux) {
	s.httpHandler.RegisterRoutes(router, s.requireAuth)
}
