package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/projectshelf/internal/common"
	"github.com/dmitrijs2005/projectshelf/internal/dbx"
	"github.com/dmitrijs2005/projectshelf/internal/server/config"
	"github.com/dmitrijs2005/projectshelf/internal/server/models"
	"github.com/dmitrijs2005/projectshelf/internal/server/outbox"
	"github.com/dmitrijs2005/projectshelf/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/projectshelf/internal/server/repositories/resets"
	"github.com/dmitrijs2005/projectshelf/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeUsersRepo struct {
	byID      map[string]*models.User
	createErr error
	getErr    error
	updateErr error
	passwords map[string]string
}

func newFakeUsers(us ...*models.User) *fakeUsersRepo {
	r := &fakeUsersRepo{byID: map[string]*models.User{}, passwords: map[string]string{}}
	for _, u := range us {
		r.byID[u.ID] = u
	}
	return r
}

func (r *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}
	created := *u
	created.ID = fmt.Sprintf("u%d", len(r.byID)+1)
	created.CreatedAt = time.Unix(100, 0).UTC()
	created.UpdatedAt = created.CreatedAt
	r.byID[created.ID] = &created
	return &created, nil
}

func (r *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUsersRepo) UpdateProfile(_ context.Context, u *models.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	c := *u
	r.byID[u.ID] = &c
	return nil
}

func (r *fakeUsersRepo) UpdatePassword(_ context.Context, id, hash string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	r.passwords[id] = hash
	return nil
}

type fakeTokensRepo struct {
	tokens    map[string]*models.RefreshToken
	createErr error
	deleteErr error
}

func newFakeTokens() *fakeTokensRepo {
	return &fakeTokensRepo{tokens: map[string]*models.RefreshToken{}}
}

func (r *fakeTokensRepo) Create(_ context.Context, userID, token string, validity time.Duration) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *fakeTokensRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (r *fakeTokensRepo) Delete(_ context.Context, token string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.tokens, token)
	return nil
}

func (r *fakeTokensRepo) DeleteByUser(_ context.Context, userID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

type fakeResetsRepo struct {
	byHash    map[string]*models.PasswordReset
	createErr error
	findErr   error
}

func newFakeResets() *fakeResetsRepo {
	return &fakeResetsRepo{byHash: map[string]*models.PasswordReset{}}
}

func (r *fakeResetsRepo) Create(_ context.Context, reset *models.PasswordReset) error {
	if r.createErr != nil {
		return r.createErr
	}
	reset.ID = "r1"
	c := *reset
	r.byHash[reset.TokenHash] = &c
	return nil
}

func (r *fakeResetsRepo) FindByHash(_ context.Context, hash string) (*models.PasswordReset, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	reset, ok := r.byHash[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *reset
	return &c, nil
}

func (r *fakeResetsRepo) DeleteByUser(_ context.Context, userID string) error {
	for k, reset := range r.byHash {
		if reset.UserID == userID {
			delete(r.byHash, k)
		}
	}
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTokensRepo
	r *fakeResetsRepo
}

func newFakeManager(us ...*models.User) *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsers(us...), t: newFakeTokens(), r: newFakeResets()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.t }
func (m *fakeRepoManager) Resets(dbx.DBTX) resets.Repository { return m.r }

type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (l *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, l.err
}

type fakeMailer struct {
	sent []outbox.Message
	err  error
}

func (m *fakeMailer) Enqueue(_ context.Context, msg outbox.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "secret",
		AccessTokenValidityDuration:  15 * time.Minute,
		RefreshTokenValidityDuration: time.Hour,
		ResetTokenValidityDuration:   time.Hour,
		ResetURL:                     "http://shelf.test/reset-password",
		S3Region:                     "us-east-1",
		S3RootUser:                   "minioadmin",
		S3RootPassword:               "minioadmin",
		S3BaseEndpoint:               "http://127.0.0.1:9000",
		S3Bucket:                     "avatars",
	}
}
