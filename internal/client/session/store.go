// Package session owns the client's notion of "who is signed in".
//
// A Store holds the current identity and a loading flag, talks to the auth
// backend for every identity-changing operation, and writes the identity
// through to a durable slot so it survives restarts. Observers (the access
// gate, the UI) subscribe to state changes.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/projectshelf/internal/client/models"
	"github.com/dmitrijs2005/projectshelf/internal/logging"
)

// SlotKey is the durable slot key holding the serialized identity.
const SlotKey = "user"

// Backend is the auth collaborator. Implementations return a complete
// identity on login, signup and profile update.
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.Identity, error)
	Signup(ctx context.Context, email, password, username string) (*models.Identity, error)
	// SignOut ends the backend session. Failures are not fatal to logout.
	SignOut(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.Identity, error)
}

// Slot is durable key/value storage. Get returns (nil, nil) when the key is absent.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// State is a snapshot of the store. Identity is nil when signed out.
type State struct {
	Identity *models.Identity
	Loading  bool
}

// SignedIn reports whether an identity is present.
func (s State) SignedIn() bool {
	return s.Identity != nil
}

// Store is safe for concurrent use. Identity-changing operations are
// serialized: at most one runs at a time.
type Store struct {
	backend Backend
	slot    Slot
	logger  logging.Logger

	ops         sync.Mutex
	initialized bool

	mu       sync.RWMutex
	identity *models.Identity
	loading  bool

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// NewStore returns a store in its initial state: loading, no identity.
// Call Initialize to hydrate it from the slot.
func NewStore(backend Backend, slot Slot, logger logging.Logger) *Store {
	return &Store{
		backend: backend,
		slot:    slot,
		logger:  logger.With("module", "session"),
		loading: true,
		subs:    make(map[int]func(State)),
	}
}

// State returns a snapshot. The identity is a copy.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Identity: s.identity.Clone(), Loading: s.loading}
}

// Subscribe registers fn to be called synchronously after every state change.
// fn must not call Store operations other than State. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Initialize restores the persisted identity. It runs once; later calls are
// no-ops. Unreadable or malformed slot contents are removed and the store
// settles signed out. It never fails.
func (s *Store) Initialize(ctx context.Context) {
	s.ops.Lock()
	defer s.ops.Unlock()

	if s.initialized {
		return
	}
	s.initialized = true
	defer s.end()

	identity, err := s.load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "discarding persisted session", "error", err)
		if err := s.slot.Delete(ctx, SlotKey); err != nil {
			s.logger.Error(ctx, "failed to remove persisted session", "error", err)
		}
		identity = nil
	}
	if identity != nil {
		s.logger.Info(ctx, "session restored", "user_id", identity.ID)
	}
	s.setIdentity(identity)
}

// Login signs in with email and password and persists the resulting identity.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.ops.Lock()
	defer s.ops.Unlock()
	s.begin()
	defer s.end()

	identity, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn(ctx, "login failed", "email", email, "error", err)
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if !identity.Present() {
		return fmt.Errorf("%w: %w", ErrAuthentication, models.ErrInvalidIdentity)
	}

	if err := s.save(ctx, identity); err != nil {
		return err
	}
	s.setIdentity(identity)
	s.logger.Info(ctx, "signed in", "user_id", identity.ID)
	return nil
}

// Signup registers a new account. The new identity starts unverified.
func (s *Store) Signup(ctx context.Context, email, password, username string) error {
	s.ops.Lock()
	defer s.ops.Unlock()
	s.begin()
	defer s.end()

	identity, err := s.backend.Signup(ctx, email, password, username)
	if err != nil {
		s.logger.Warn(ctx, "signup failed", "email", email, "username", username, "error", err)
		return fmt.Errorf("%w: %w", ErrRegistration, err)
	}
	if !identity.Present() {
		return fmt.Errorf("%w: %w", ErrRegistration, models.ErrInvalidIdentity)
	}
	identity = identity.Clone()
	identity.EmailVerified = false

	if err := s.save(ctx, identity); err != nil {
		return err
	}
	s.setIdentity(identity)
	s.logger.Info(ctx, "signed up", "user_id", identity.ID)
	return nil
}

// Logout forgets the identity. The in-memory identity is cleared even when
// removing the persisted copy fails, in which case ErrStorage is returned.
func (s *Store) Logout(ctx context.Context) error {
	s.ops.Lock()
	defer s.ops.Unlock()
	s.begin()
	defer s.end()

	s.setIdentity(nil)

	if err := s.backend.SignOut(ctx); err != nil {
		s.logger.Warn(ctx, "backend sign-out failed", "error", err)
	}

	if err := s.clear(ctx); err != nil {
		s.logger.Error(ctx, "failed to remove persisted session", "error", err)
		return err
	}
	s.logger.Info(ctx, "signed out")
	return nil
}

// RequestPasswordReset asks the backend to send reset instructions to email.
// Local state does not change.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	s.ops.Lock()
	defer s.ops.Unlock()
	s.begin()
	defer s.end()

	if err := s.backend.RequestPasswordReset(ctx, email); err != nil {
		s.logger.Warn(ctx, "password reset request failed", "email", email, "error", err)
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}

// UpdateProfile checks the fields patch sets, sends it to the backend and
// persists the backend's merged result with its refreshed update timestamp. Without a current
// identity it returns ErrNotAuthenticated and leaves the state untouched.
func (s *Store) UpdateProfile(ctx context.Context, patch models.ProfilePatch) error {
	s.ops.Lock()
	defer s.ops.Unlock()

	current := s.current()
	if current == nil {
		return ErrNotAuthenticated
	}

	s.begin()
	defer s.end()

	if err := patch.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	updated, err := s.backend.UpdateProfile(ctx, patch)
	if err != nil {
		s.logger.Warn(ctx, "profile update rejected", "user_id", current.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if !updated.Present() {
		return fmt.Errorf("%w: %w", ErrValidation, models.ErrInvalidIdentity)
	}
	if err := s.save(ctx, updated); err != nil {
		return err
	}
	s.setIdentity(updated)
	s.logger.Info(ctx, "profile updated", "user_id", updated.ID)
	return nil
}

func (s *Store) load(ctx context.Context) (*models.Identity, error) {
	raw, err := s.slot.Get(ctx, SlotKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if raw == nil {
		return nil, nil
	}

	var identity models.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("corrupt session: %w", err)
	}
	if !identity.Present() {
		return nil, fmt.Errorf("corrupt session: %w", models.ErrInvalidIdentity)
	}
	return &identity, nil
}

func (s *Store) save(ctx context.Context, identity *models.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := s.slot.Set(ctx, SlotKey, raw); err != nil {
		s.logger.Error(ctx, "failed to persist session", "error", err)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func (s *Store) clear(ctx context.Context) error {
	if err := s.slot.Delete(ctx, SlotKey); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func (s *Store) current() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.Clone()
}

func (s *Store) setIdentity(identity *models.Identity) {
	s.mu.Lock()
	s.identity = identity.Clone()
	s.mu.Unlock()
	s.publish()
}

func (s *Store) begin() {
	s.setLoading(true)
}

func (s *Store) end() {
	s.setLoading(false)
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
	s.publish()
}

func (s *Store) publish() {
	state := s.State()

	s.subMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
