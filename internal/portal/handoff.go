package portal

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/api"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/session"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/pkg/logging"
)

// SessionAcceptor is the slice of the session store the handoff needs.
type SessionAcceptor interface {
	AcceptHandoffToken(ctx context.Context, token string) (*api.User, error)
}

// HandoffHandler receives one-time credentials on this portal's /login
// route, the target of the sibling portals' cross-portal redirects. The
// token is resolved against the backend and admitted under the same role
// gate as any other login; a non-patient identity is redirected onward to
// its own portal by the shared router.
type HandoffHandler struct {
	sessions SessionAcceptor
	router   *Router
	logger   *logging.Logger
}

func NewHandoffHandler(sessions SessionAcceptor, router *Router, logger *logging.Logger) *HandoffHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HandoffHandler{sessions: sessions, router: router, logger: logger}
}

// Mount registers the handoff route.
func (h *HandoffHandler) Mount(r chi.Router) {
	r.Get("/login", h.Login)
}

// Login handles GET /login?token=...
func (h *HandoffHandler) Login(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusBadRequest)
		return
	}

	user, err := h.sessions.AcceptHandoffToken(r.Context(), token)
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusFound)

	case errors.Is(err, session.ErrRoleMismatch):
		decision, routeErr := h.router.Route(user, token)
		if routeErr != nil {
			http.Error(w, routeErr.Error(), http.StatusForbidden)
			return
		}
		http.Redirect(w, r, decision.RedirectURL, http.StatusFound)

	case api.IsUnauthorized(err):
		http.Error(w, "handoff token rejected", http.StatusUnauthorized)

	default:
		h.logger.Error("handoff resolution failed", "error", err)
		http.Error(w, "could not verify login, please retry", http.StatusBadGateway)
	}
}
