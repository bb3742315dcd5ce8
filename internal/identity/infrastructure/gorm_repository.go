package infrastructure

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/luxtrip/go-busline/internal/identity/domain"
	"github.com/luxtrip/go-busline/pkg/application"
)

const uniqueViolation = "23505"

type gormUserRepository struct {
	db     *gorm.DB
	logger application.AppLogger
}

func NewGormUserRepository(db *gorm.DB, logger application.AppLogger) (domain.UserRepository, error) {
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return nil, err
	}

	return &gormUserRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.User{}, domain.ErrEmailTaken
		}
		application.LogError(ctx, r.logger, "failed to save user", err, map[string]interface{}{
			"email": user.Email,
		})
		return domain.User{}, err
	}

	return user, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		application.LogError(ctx, r.logger, "failed to find user by email", err, map[string]interface{}{
			"email": email,
		})
		return domain.User{}, err
	}
	return user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id int) (domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "user_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		application.LogError(ctx, r.logger, "failed to find user", err, map[string]interface{}{
			"user_id": id,
		})
		return domain.User{}, err
	}
	return user, nil
}

func (r *gormUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		application.LogError(ctx, r.logger, "failed to list users", err, nil)
		return nil, err
	}
	return users, nil
}
