// Package session owns the portal's credential and authenticated identity.
// Exactly one Store exists per running client; every mutation of session
// state funnels through its operations, and the persisted credential is
// never written by anything else.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/api"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/pkg/logging"
)

// Status is the session's resolution state.
type Status int

const (
	// StatusUnresolved means a credential is held but the backend has not
	// yet confirmed the identity behind it.
	StatusUnresolved Status = iota
	// StatusValid means a patient identity is confirmed.
	StatusValid
	// StatusInvalid means no credential is held.
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusUnresolved:
		return "unresolved"
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// IdentityClient is the slice of the backend client the store needs.
type IdentityClient interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Me(ctx context.Context) (*api.User, error)
	MeWithToken(ctx context.Context, token string) (*api.User, error)
}

// Store holds the current credential and identity.
//
// Invariants: StatusValid implies a patient identity is present;
// StatusInvalid implies the credential is absent.
type Store struct {
	mu         sync.Mutex
	credential string
	identity   *api.User
	status     Status

	client  IdentityClient
	storage Storage
	logger  *logging.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates the session store. The identity client is attached
// afterwards with SetClient because the API client in turn needs the store
// as its token source.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		status:  StatusInvalid,
		storage: storage,
		logger:  logging.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetClient attaches the backend client. Must be called before any
// operation that talks to the backend.
func (s *Store) SetClient(client IdentityClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
}

// Token returns the held credential, or "" when none is held. Implements
// api.TokenSource, so every outbound request reads the credential through
// here.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

// Status returns the current resolution state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Identity returns the authenticated identity, or nil while the session is
// not valid.
func (s *Store) Identity() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusValid {
		return nil
	}
	return s.identity
}

// TokenExpired reports whether the held credential is visibly expired by
// its own exp claim. False when no credential is held or the token is
// opaque.
func (s *Store) TokenExpired() bool {
	s.mu.Lock()
	token := s.credential
	now := s.now()
	s.mu.Unlock()
	if token == "" {
		return false
	}
	return tokenExpired(token, now)
}

// Initialize resolves a persisted credential at startup.
//
// No stored credential leaves the session invalid (logged out). A stored
// credential marks the session unresolved, then /auth/me decides: a
// patient identity makes it valid; any other role is foreign-role leakage
// and the credential is discarded without surfacing the identity; a 401
// discards the credential. Transient failures keep the credential and
// return an error so the caller can retry; they must not silently log
// the user out.
func (s *Store) Initialize(ctx context.Context) error {
	token, err := s.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("session: load persisted credential: %w", err)
	}
	if token == "" {
		s.clear(ctx)
		return nil
	}

	s.mu.Lock()
	s.credential = token
	s.identity = nil
	s.status = StatusUnresolved
	s.mu.Unlock()

	user, err := s.client.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.logger.Info("persisted credential rejected, logging out")
			s.clear(ctx)
			return nil
		}
		s.logger.Warn("identity resolution failed, keeping credential", "error", err)
		return fmt.Errorf("session: resolve identity: %w", err)
	}

	if user.Role != api.RolePatient {
		s.logger.Warn("non-patient credential found in patient portal, discarding",
			"role", user.Role, "email", user.Email)
		s.clear(ctx)
		return nil
	}

	s.mu.Lock()
	s.identity = user
	s.status = StatusValid
	s.mu.Unlock()
	s.logger.Info("session restored", "email", user.Email)
	return nil
}

// Login authenticates with the backend. The returned response is non-nil
// whenever the backend authenticated the user, including on
// ErrRoleMismatch, so the caller can hand the identity and credential to
// the role router. Only a patient identity is persisted.
func (s *Store) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	auth, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if auth.User.Role != api.RolePatient {
		s.clear(ctx)
		return auth, ErrRoleMismatch
	}

	s.persist(ctx, auth.Token, &auth.User)
	s.logger.Info("patient logged in", "email", auth.User.Email)
	return auth, nil
}

// SetFromExternalIssue accepts a credential issued outside the login call,
// such as by registration. The same role-patient invariant applies.
func (s *Store) SetFromExternalIssue(ctx context.Context, token string, user *api.User) error {
	if user == nil || user.Role != api.RolePatient {
		s.clear(ctx)
		return ErrRoleMismatch
	}
	s.persist(ctx, token, user)
	return nil
}

// AcceptHandoffToken resolves a one-time credential received from another
// portal's redirect and admits it under the usual role gate. The resolved
// identity is returned even on ErrRoleMismatch so the caller can redirect
// onward.
func (s *Store) AcceptHandoffToken(ctx context.Context, token string) (*api.User, error) {
	user, err := s.client.MeWithToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.SetFromExternalIssue(ctx, token, user); err != nil {
		return user, err
	}
	return user, nil
}

// Logout clears the session and the persisted credential. No backend call
// is made.
func (s *Store) Logout(ctx context.Context) {
	s.clear(ctx)
	s.logger.Info("logged out")
}

// Invalidate clears the session identically to Logout. It is registered as
// the API client's unauthorized hook, so any authenticated request that
// comes back 401 destroys the credential. Safe to call repeatedly.
func (s *Store) Invalidate() {
	s.clear(context.Background())
}

func (s *Store) persist(ctx context.Context, token string, user *api.User) {
	if err := s.storage.Save(ctx, token); err != nil {
		// The in-memory session still works; it just will not survive a
		// restart.
		s.logger.Warn("failed to persist credential", "error", err)
	}
	s.mu.Lock()
	s.credential = token
	s.identity = user
	s.status = StatusValid
	s.mu.Unlock()
}

func (s *Store) clear(ctx context.Context) {
	if err := s.storage.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear persisted credential", "error", err)
	}
	s.mu.Lock()
	s.credential = ""
	s.identity = nil
	s.status = StatusInvalid
	s.mu.Unlock()
}
