// Package resets stores pending password resets, keyed by token hash.
package resets

import (
	"context"

	"github.com/dmitrijs2005/projectshelf/internal/server/models"
)

type Repository interface {
	// Create fills in reset.ID and reset.CreatedAt.
	Create(ctx context.Context, reset *models.PasswordReset) error

	// FindByHash returns common.ErrorNotFound for an unknown hash.
	FindByHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error)

	// DeleteByUser removes every pending reset of userID.
	DeleteByUser(ctx context.Context, userID string) error
}
