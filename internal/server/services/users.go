// Package services contains the auth server's business logic: accounts and
// tokens, password resets and avatar uploads.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/projectshelf/internal/common"
	"github.com/dmitrijs2005/projectshelf/internal/dbx"
	"github.com/dmitrijs2005/projectshelf/internal/server/auth"
	"github.com/dmitrijs2005/projectshelf/internal/server/config"
	"github.com/dmitrijs2005/projectshelf/internal/server/models"
	"github.com/dmitrijs2005/projectshelf/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type registration struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=30,handle"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserService registers accounts, signs them in and out, rotates refresh
// tokens and edits profiles.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	validate                     *validator.Validate
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		validate:                     newValidator(),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// Register creates an unverified account and signs it in. The username
// doubles as the initial display name.
func (s *UserService) Register(ctx context.Context, email, password, username string) (*models.User, *TokenPair, error) {
	in := registration{
		Email:    strings.TrimSpace(email),
		Username: strings.TrimSpace(username),
		Password: password,
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, validationError(err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Email:        in.Email,
		Username:     in.Username,
		DisplayName:  in.Username,
		PasswordHash: hash,
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		pair, err = s.generateTokenPair(ctx, created.ID, tx)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, pair, nil
}

// Login checks the password. Unknown email and wrong password look the same.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshToken exchanges a refresh token for a new pair. The old token is
// deleted in the same transaction that stores the new one.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		_ = repo.Delete(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var err error
		pair, err = s.generateTokenPair(ctx, token.UserID, tx)
		return err
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes refreshToken. Unknown or empty tokens are not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// UpdateProfile validates patch, merges it into the stored profile and
// returns the result. An avatar must be a key issued to this user.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, validationError(err)
	}
	if patch.Avatar != nil && *patch.Avatar != "" && !strings.HasPrefix(*patch.Avatar, AvatarKeyPrefix(userID)) {
		return nil, fmt.Errorf("%w: avatar must be uploaded first", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Apply(patch, s.now().UTC())
	if err := repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, db dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if err := s.repomanager.RefreshTokens(db).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordLength) {
		return "", fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return hash, nil
}
