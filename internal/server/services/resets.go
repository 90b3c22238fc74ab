package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/projectshelf/internal/common"
	"github.com/dmitrijs2005/projectshelf/internal/dbx"
	"github.com/dmitrijs2005/projectshelf/internal/server/auth"
	"github.com/dmitrijs2005/projectshelf/internal/server/config"
	"github.com/dmitrijs2005/projectshelf/internal/server/models"
	"github.com/dmitrijs2005/projectshelf/internal/server/outbox"
	"github.com/dmitrijs2005/projectshelf/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

// RateLimiter counts attempts per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Mailer queues outgoing mail.
type Mailer interface {
	Enqueue(ctx context.Context, msg outbox.Message) error
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// PasswordResetService issues single-use reset links and redeems them.
type PasswordResetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	limiter     RateLimiter
	mailer      Mailer
	validate    *validator.Validate
	resetURL    string
	validity    time.Duration
	now         func() time.Time
}

func NewPasswordResetService(db *sql.DB, m repomanager.RepositoryManager, limiter RateLimiter, mailer Mailer, cfg *config.Config) *PasswordResetService {
	return &PasswordResetService{
		db:          db,
		repomanager: m,
		limiter:     limiter,
		mailer:      mailer,
		validate:    newValidator(),
		resetURL:    cfg.ResetURL,
		validity:    cfg.ResetTokenValidityDuration,
		now:         time.Now,
	}
}

// RequestReset mails a reset link to email. Unknown addresses succeed
// without sending anything. Earlier pending resets for the user are
// replaced.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	in := resetRequest{Email: strings.TrimSpace(email)}
	if err := s.validate.Struct(in); err != nil {
		return validationError(err)
	}

	ok, err := s.limiter.Allow(ctx, in.Email)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorDelivery, err)
	}
	if !ok {
		return common.ErrorRateLimited
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, in.Email)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	token, hash, err := auth.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	reset := &models.PasswordReset{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: s.now().UTC().Add(s.validity),
	}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Resets(tx)
		if err := repo.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		return repo.Create(ctx, reset)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	msg := outbox.Message{
		Kind:      outbox.KindPasswordReset,
		To:        user.Email,
		Username:  user.Username,
		Link:      s.resetLink(token),
		ExpiresAt: reset.ExpiresAt,
	}
	if err := s.mailer.Enqueue(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorDelivery, err)
	}
	return nil
}

// ResetPassword redeems token and sets a new password. On success every
// pending reset and refresh token of the user is revoked.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return common.ErrInvalidToken
	}

	reset, err := s.repomanager.Resets(s.db).FindByHash(ctx, auth.HashResetToken(token))
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if reset.Expired(s.now()) {
		return common.ErrResetTokenExpired
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, reset.UserID, hash); err != nil {
			return err
		}
		if err := s.repomanager.Resets(tx).DeleteByUser(ctx, reset.UserID); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, reset.UserID)
	})
}

func (s *PasswordResetService) resetLink(token string) string {
	sep := "?"
	if strings.Contains(s.resetURL, "?") {
		sep = "&"
	}
	return s.resetURL + sep + "token=" + url.QueryEscape(token)
}
