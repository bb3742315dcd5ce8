package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/luxtrip/go-busline/internal/catalog/application"
	"github.com/luxtrip/go-busline/internal/catalog/domain"
	pkgApp "github.com/luxtrip/go-busline/pkg/application"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
)

const requestTimeout = 10 * time.Second

type CatalogHTTPHandler struct {
	busQueryBus  pkgApp.QueryBus[pkgDomain.Query[application.FindBusesData], application.FindBusesData, []application.BusSummary]
	cityQueryBus pkgApp.QueryBus[pkgDomain.Query[application.ListCitiesData], application.ListCitiesData, []domain.City]
}

func NewCatalogHTTPHandler(
	busQueryBus pkgApp.QueryBus[pkgDomain.Query[application.FindBusesData], application.FindBusesData, []application.BusSummary],
	cityQueryBus pkgApp.QueryBus[pkgDomain.Query[application.ListCitiesData], application.ListCitiesData, []domain.City],
) *CatalogHTTPHandler {
	return &CatalogHTTPHandler{
		busQueryBus:  busQueryBus,
		cityQueryBus: cityQueryBus,
	}
}

func (h *CatalogHTTPHandler) HandleListBuses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	buses, err := h.busQueryBus.Dispatch(ctx, application.NewListBusesQuery())
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, buses)
}

func (h *CatalogHTTPHandler) HandleGetBus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid bus id parameter"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	buses, err := h.busQueryBus.Dispatch(ctx, application.NewFindBusQuery(id))
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, buses[0])
}

func (h *CatalogHTTPHandler) HandleListCities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cities, err := h.cityQueryBus.Dispatch(ctx, application.NewListCitiesQuery())
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cities)
}

// RegisterRoutes mounts the catalog routes. Bus detail requires auth;
// the bus and city listings are public, mirroring the booking client's
// landing page needs.
func (h *CatalogHTTPHandler) RegisterRoutes(router chi.Router, requireAuth func(http.Handler) http.Handler) {
	router.Get("/api/bus/buses", h.HandleListBuses)
	router.Get("/api/bus/cities", h.HandleListCities)

	router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/api/bus/buses/{id}", h.HandleGetBus)
	})
}

func writeCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrBusNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "Bus not found"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "Internal Server Error"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
