// Package users declares the account repository contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/projectshelf/internal/server/models"
)

// Repository persists accounts. Lookups return common.ErrorNotFound when no
// row matches; Create returns common.ErrorAlreadyExists on an email or
// username collision.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
