package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/luxtrip/go-busline/internal/catalog/domain"
	"github.com/luxtrip/go-busline/pkg/application"
)

type gormCatalogRepository struct {
	db     *gorm.DB
	logger application.AppLogger
}

func NewGormCatalogRepository(db *gorm.DB, logger application.AppLogger) (domain.CatalogRepository, error) {
	if err := db.AutoMigrate(&domain.City{}, &domain.Route{}, &domain.Bus{}); err != nil {
		return nil, err
	}

	return &gormCatalogRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormCatalogRepository) FindBuses(ctx context.Context) ([]domain.Bus, error) {
	var buses []domain.Bus
	err := r.db.WithContext(ctx).
		Preload("Route.DepartureCity").
		Preload("Route.ArrivalCity").
		Find(&buses).Error
	if err != nil {
		application.LogError(ctx, r.logger, "failed to fetch buses", err, nil)
		return nil, err
	}
	return buses, nil
}

func (r *gormCatalogRepository) FindBusByID(ctx context.Context, id int) (domain.Bus, error) {
	var bus domain.Bus
	err := r.db.WithContext(ctx).
		Preload("Route.DepartureCity").
		Preload("Route.ArrivalCity").
		First(&bus, "bus_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Bus{}, domain.ErrBusNotFound
		}
		application.LogError(ctx, r.logger, "failed to fetch bus", err, map[string]interface{}{
			"bus_id": id,
		})
		return domain.Bus{}, err
	}
	return bus, nil
}

func (r *gormCatalogRepository) FindCities(ctx context.Context) ([]domain.City, error) {
	var cities []domain.City
	if err := r.db.WithContext(ctx).Find(&cities).Error; err != nil {
		application.LogError(ctx, r.logger, "failed to fetch cities", err, nil)
		return nil, err
	}
	return cities, nil
}
