package domain

import (
	"context"
	"errors"
)

type User struct {
	ID           int    `json:"id" gorm:"column:user_id;primaryKey"`
	Name         string `json:"name"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	PasswordHash string `json:"-" gorm:"column:password"`
}

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("user already exists")
	ErrInvalidPassword = errors.New("invalid password")
)

type UserRepository interface {
	Save(ctx context.Context, user User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int) (User, error)
	FindAll(ctx context.Context) ([]User, error)
}
