package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/projectshelf/internal/client/models"
)

var errBoom = errors.New("boom")

type fakeBackend struct {
	mu sync.Mutex

	loginIdentity *models.Identity
	loginErr      error
	lastLoginPass string

	signupIdentity *models.Identity
	signupErr      error

	signOutCalls int
	signOutErr   error

	resetEmail string
	resetErr   error

	lastPatch   *models.ProfilePatch
	updateErr   error
	updateClock func() time.Time
	current     *models.Identity
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLoginPass = password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.loginIdentity != nil {
		f.current = f.loginIdentity.Clone()
		return f.loginIdentity.Clone(), nil
	}
	f.current = &models.Identity{ID: "id-" + email, Email: email, Username: "user", EmailVerified: true}
	return f.current.Clone(), nil
}

func (f *fakeBackend) Signup(_ context.Context, email, _ string, username string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	if f.signupIdentity != nil {
		f.current = f.signupIdentity.Clone()
		return f.signupIdentity.Clone(), nil
	}
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	f.current = &models.Identity{ID: "id-" + username, Email: email, Username: username, DisplayName: username, CreatedAt: now, UpdatedAt: now}
	return f.current.Clone(), nil
}

func (f *fakeBackend) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeBackend) RequestPasswordReset(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetEmail = email
	return f.resetErr
}

func (f *fakeBackend) UpdateProfile(_ context.Context, patch models.ProfilePatch) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPatch = &patch
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	now := time.Now()
	if f.updateClock != nil {
		now = f.updateClock()
	}
	f.current = f.current.Apply(patch, now)
	return f.current.Clone(), nil
}

type fakeSlot struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
	delErr error

	deletes int
}

func newFakeSlot() *fakeSlot {
	return &fakeSlot{data: map[string][]byte{}}
}

func (f *fakeSlot) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.data[key], nil
}

func (f *fakeSlot) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeSlot) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.data, key)
	return nil
}

func (f *fakeSlot) raw(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key]
}
