package portal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/api"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/session"
)

type stubAcceptor struct {
	user     *api.User
	err      error
	gotToken string
}

func (s *stubAcceptor) AcceptHandoffToken(_ context.Context, token string) (*api.User, error) {
	s.gotToken = token
	return s.user, s.err
}

func serveHandoff(t *testing.T, acceptor *stubAcceptor, target string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewHandoffHandler(acceptor, newTestRouter(), nil)
	r := chi.NewRouter()
	handler.Mount(r)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandoffAdmitsPatient(t *testing.T) {
	acceptor := &stubAcceptor{user: &api.User{Role: api.RolePatient}}
	rec := serveHandoff(t, acceptor, "/login?token=one-time")

	assert.Equal(t, "one-time", acceptor.gotToken)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestHandoffRedirectsForeignRoleOnward(t *testing.T) {
	acceptor := &stubAcceptor{
		user: &api.User{Role: api.RoleDoctor},
		err:  session.ErrRoleMismatch,
	}
	rec := serveHandoff(t, acceptor, "/login?token=doc-tok")

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://doctors.example/login?token=doc-tok", rec.Header().Get("Location"))
}

func TestHandoffMissingToken(t *testing.T) {
	rec := serveHandoff(t, &stubAcceptor{}, "/login")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandoffRejectedToken(t *testing.T) {
	acceptor := &stubAcceptor{err: &api.Error{StatusCode: http.StatusUnauthorized}}
	rec := serveHandoff(t, acceptor, "/login?token=bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandoffTransientFailure(t *testing.T) {
	acceptor := &stubAcceptor{err: errors.New("connection reset")}
	rec := serveHandoff(t, acceptor, "/login?token=tok")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
