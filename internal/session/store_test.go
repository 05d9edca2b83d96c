package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/api"
)

type fakeBackend struct {
	loginResp *api.AuthResponse
	loginErr  error
	meUser    *api.User
	meErr     error
	meCalls   int
}

func (f *fakeBackend) Login(context.Context, string, string) (*api.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeBackend) Me(context.Context) (*api.User, error) {
	f.meCalls++
	return f.meUser, f.meErr
}

func (f *fakeBackend) MeWithToken(context.Context, string) (*api.User, error) {
	f.meCalls++
	return f.meUser, f.meErr
}

func newTestStore(t *testing.T, backend IdentityClient, storage Storage) *Store {
	t.Helper()
	if storage == nil {
		storage = NewMemoryStorage()
	}
	store := NewStore(storage)
	store.SetClient(backend)
	return store
}

func TestInitializeRestoresPatientSession(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(context.Background(), "tok"))
	backend := &fakeBackend{meUser: &api.User{ID: 1, Email: "p@x.com", Role: api.RolePatient}}
	store := newTestStore(t, backend, storage)

	require.NoError(t, store.Initialize(context.Background()))
	assert.Equal(t, StatusValid, store.Status())
	require.NotNil(t, store.Identity())
	assert.Equal(t, "p@x.com", store.Identity().Email)
	assert.Equal(t, "tok", store.Token())
}

func TestInitializeWithoutCredential(t *testing.T) {
	store := newTestStore(t, &fakeBackend{}, nil)

	require.NoError(t, store.Initialize(context.Background()))
	assert.Equal(t, StatusInvalid, store.Status())
	assert.Empty(t, store.Token())
}

func TestInitializeForeignRoleLeakage(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(context.Background(), "doctor-token"))
	backend := &fakeBackend{meUser: &api.User{ID: 2, Email: "d@x.com", Role: api.RoleDoctor}}
	store := newTestStore(t, backend, storage)

	require.NoError(t, store.Initialize(context.Background()))
	assert.Equal(t, StatusInvalid, store.Status())
	assert.Nil(t, store.Identity(), "foreign identity must never be surfaced")
	assert.Empty(t, store.Token())

	persisted, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, persisted, "foreign-role credential must be discarded from storage")
}

func TestInitializeUnauthorizedDiscardsCredential(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(context.Background(), "stale"))
	backend := &fakeBackend{meErr: &api.Error{StatusCode: http.StatusUnauthorized, Message: "expired"}}
	store := newTestStore(t, backend, storage)

	require.NoError(t, store.Initialize(context.Background()))
	assert.Equal(t, StatusInvalid, store.Status())
	assert.Empty(t, store.Token())
}

func TestInitializeTransientFailureKeepsCredential(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(context.Background(), "tok"))
	backend := &fakeBackend{meErr: errors.New("connection refused")}
	store := newTestStore(t, backend, storage)

	err := store.Initialize(context.Background())
	require.Error(t, err, "transient failure must be reported for retry")
	assert.Equal(t, StatusUnresolved, store.Status())
	assert.Equal(t, "tok", store.Token(), "transient failure must not log the user out")

	persisted, loadErr := storage.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Equal(t, "tok", persisted)

	// Retrying after the backend recovers resolves the session.
	backend.meErr = nil
	backend.meUser = &api.User{ID: 1, Email: "p@x.com", Role: api.RolePatient}
	require.NoError(t, store.Initialize(context.Background()))
	assert.Equal(t, StatusValid, store.Status())
}

func TestLoginPatientPersists(t *testing.T) {
	storage := NewMemoryStorage()
	backend := &fakeBackend{loginResp: &api.AuthResponse{
		Token: "fresh",
		User:  api.User{ID: 3, Email: "p@x.com", Role: api.RolePatient},
	}}
	store := newTestStore(t, backend, storage)

	auth, err := store.Login(context.Background(), "p@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh", auth.Token)
	assert.Equal(t, StatusValid, store.Status())

	persisted, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", persisted)
}

func TestLoginNonPatientNeverBecomesValid(t *testing.T) {
	storage := NewMemoryStorage()
	backend := &fakeBackend{loginResp: &api.AuthResponse{
		Token: "doctor-token",
		User:  api.User{ID: 4, Email: "d@x.com", Role: api.RoleDoctor},
	}}
	store := newTestStore(t, backend, storage)

	auth, err := store.Login(context.Background(), "d@x.com", "pw")
	require.ErrorIs(t, err, ErrRoleMismatch)
	require.NotNil(t, auth, "identity must be returned so the role router can redirect")

	assert.Equal(t, StatusInvalid, store.Status())
	assert.Empty(t, store.Token())
	persisted, loadErr := storage.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Empty(t, persisted, "non-patient credential must not be persisted")
}

func TestSetFromExternalIssue(t *testing.T) {
	store := newTestStore(t, &fakeBackend{}, nil)
	ctx := context.Background()

	err := store.SetFromExternalIssue(ctx, "reg-token", &api.User{ID: 5, Role: api.RolePatient})
	require.NoError(t, err)
	assert.Equal(t, StatusValid, store.Status())
	assert.Equal(t, "reg-token", store.Token())

	err = store.SetFromExternalIssue(ctx, "admin-token", &api.User{ID: 6, Role: api.RoleAdmin})
	require.ErrorIs(t, err, ErrRoleMismatch)
	assert.Equal(t, StatusInvalid, store.Status())
	assert.Empty(t, store.Token())
}

func TestAcceptHandoffToken(t *testing.T) {
	backend := &fakeBackend{meUser: &api.User{ID: 7, Email: "p@x.com", Role: api.RolePatient}}
	store := newTestStore(t, backend, nil)

	user, err := store.AcceptHandoffToken(context.Background(), "handoff")
	require.NoError(t, err)
	assert.Equal(t, "p@x.com", user.Email)
	assert.Equal(t, StatusValid, store.Status())
	assert.Equal(t, "handoff", store.Token())
}

func TestAcceptHandoffTokenForeignRole(t *testing.T) {
	backend := &fakeBackend{meUser: &api.User{ID: 8, Email: "a@x.com", Role: api.RoleAdmin}}
	store := newTestStore(t, backend, nil)

	user, err := store.AcceptHandoffToken(context.Background(), "handoff")
	require.ErrorIs(t, err, ErrRoleMismatch)
	require.NotNil(t, user, "identity is returned so the caller can redirect onward")
	assert.Equal(t, StatusInvalid, store.Status())
}

func TestInvalidateIsIdempotent(t *testing.T) {
	store := newTestStore(t, &fakeBackend{}, nil)
	require.NoError(t, store.SetFromExternalIssue(context.Background(), "tok", &api.User{ID: 9, Role: api.RolePatient}))

	store.Invalidate()
	statusAfterOne := store.Status()
	tokenAfterOne := store.Token()

	store.Invalidate()
	assert.Equal(t, statusAfterOne, store.Status())
	assert.Equal(t, tokenAfterOne, store.Token())
	assert.Equal(t, StatusInvalid, store.Status())
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(NewMemoryStorage(), WithClock(func() time.Time { return now }))
	store.SetClient(&fakeBackend{})
	ctx := context.Background()

	require.NoError(t, store.SetFromExternalIssue(ctx, signedToken(t, now.Add(-time.Minute)), &api.User{Role: api.RolePatient}))
	assert.True(t, store.TokenExpired())

	require.NoError(t, store.SetFromExternalIssue(ctx, signedToken(t, now.Add(time.Hour)), &api.User{Role: api.RolePatient}))
	assert.False(t, store.TokenExpired())

	// Opaque tokens are not locally decidable.
	require.NoError(t, store.SetFromExternalIssue(ctx, "opaque-token", &api.User{Role: api.RolePatient}))
	assert.False(t, store.TokenExpired())
}
