package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/projectshelf/internal/common"
	"github.com/dmitrijs2005/projectshelf/internal/dbx"
	"github.com/dmitrijs2005/projectshelf/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `id, email, username, display_name, title, bio, avatar, social_links,
		        email_verified, password_hash, created_at, updated_at`

// PostgresRepository works over dbx.DBTX, so it runs inside or outside a transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user and fills in the generated id, verification flag and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, username, display_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email_verified, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, user.Email, user.Username, user.DisplayName, user.PasswordHash).
		Scan(&user.ID, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%w: %s", common.ErrorAlreadyExists, conflictField(pgErr.ConstraintName))
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// GetByEmail matches email case-insensitively.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE lower(email) = lower($1)
	`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// UpdateProfile overwrites the profile columns and updated_at of user.ID.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	links, err := encodeLinks(user.SocialLinks)
	if err != nil {
		return err
	}
	query := `
		UPDATE users
		SET display_name = $2, title = $3, bio = $4, avatar = $5, social_links = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.DisplayName, user.Title, user.Bio, user.Avatar, links, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var links []byte
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.DisplayName, &u.Title, &u.Bio, &u.Avatar, &links,
		&u.EmailVerified, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(links) > 0 {
		if err := json.Unmarshal(links, &u.SocialLinks); err != nil {
			return nil, fmt.Errorf("decoding social_links: %w", err)
		}
	}
	return u, nil
}

func encodeLinks(links map[string]string) (string, error) {
	if len(links) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(links)
	if err != nil {
		return "", fmt.Errorf("encoding social_links: %w", err)
	}
	return string(b), nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func conflictField(constraint string) string {
	switch constraint {
	case "users_email_lower_key":
		return "email"
	case "users_username_key":
		return "username"
	default:
		return "email or username"
	}
}
