package infrastructure

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/luxtrip/go-busline/internal/ticketing/domain"
	"github.com/luxtrip/go-busline/pkg/application"
)

const uniqueViolation = "23505"

type gormTicketRepository struct {
	db     *gorm.DB
	logger application.AppLogger
}

func NewGormTicketRepository(db *gorm.DB, logger application.AppLogger) (domain.TicketRepository, error) {
	if err := db.AutoMigrate(&domain.Ticket{}); err != nil {
		return nil, err
	}

	return &gormTicketRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormTicketRepository) Save(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	if err := r.db.WithContext(ctx).Create(&ticket).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "bus_seat") {
				return domain.Ticket{}, domain.ErrSeatTaken
			}
			return domain.Ticket{}, domain.ErrTicketCodeConflict
		}
		application.LogError(ctx, r.logger, "failed to save ticket", err, map[string]interface{}{
			"bus_id": ticket.BusID,
		})
		return domain.Ticket{}, err
	}

	return ticket, nil
}

func (r *gormTicketRepository) FindByUserID(ctx context.Context, userID int) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ticket_id DESC").
		Find(&tickets).Error
	if err != nil {
		application.LogError(ctx, r.logger, "failed to find tickets", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return tickets, nil
}

func (r *gormTicketRepository) FindByID(ctx context.Context, id int) (domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, "ticket_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		application.LogError(ctx, r.logger, "failed to find ticket", err, map[string]interface{}{
			"ticket_id": id,
		})
		return domain.Ticket{}, err
	}
	return ticket, nil
}

func (r *gormTicketRepository) FindSeatsByBusID(ctx context.Context, busID int) ([]string, error) {
	var seats []string
	err := r.db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Where("bus_id = ?", busID).
		Pluck("seat_no", &seats).Error
	if err != nil {
		application.LogError(ctx, r.logger, "failed to find booked seats", err, map[string]interface{}{
			"bus_id": busID,
		})
		return nil, err
	}
	return seats, nil
}
