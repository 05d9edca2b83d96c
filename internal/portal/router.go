// Package portal decides which portal an authenticated identity belongs
// to. Three portals (patient, doctor, admin) share one backend; a login or
// registration may therefore return an identity of any role, and every
// entry point that receives one must reach the same routing decision.
package portal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/api"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/observability/metrics"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/pkg/logging"
)

// ErrInvalidRole means the identity carries a role no portal serves. The
// user gets an error message; no redirect happens.
var ErrInvalidRole = errors.New("account role is not recognized")

// Decision is the outcome of routing an identity.
type Decision struct {
	// Admit is true when the identity belongs in this (patient) portal.
	Admit bool
	// RedirectURL is the external portal login URL, with the credential
	// attached as a one-time token parameter, when Admit is false.
	RedirectURL string
	// Role is the role the decision was based on.
	Role string
}

// Router routes identities to their home portal.
type Router struct {
	doctorPortalURL string
	adminPortalURL  string
	logger          *logging.Logger
	metrics         *metrics.ClientMetrics
}

// Option configures a Router.
type Option func(*Router)

func WithLogger(logger *logging.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(r *Router) { r.metrics = m }
}

func NewRouter(doctorPortalURL, adminPortalURL string, opts ...Option) *Router {
	r := &Router{
		doctorPortalURL: strings.TrimRight(doctorPortalURL, "/"),
		adminPortalURL:  strings.TrimRight(adminPortalURL, "/"),
		logger:          logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route decides where a freshly authenticated identity belongs. The same
// routine serves the login page, the in-context login prompt and the
// post-registration auto-login.
//
// An identity with a doctor profile belongs in the doctor portal even when
// its role still reads patient. When a redirect is issued, the credential
// travels as a one-time query parameter and this portal must not retain
// it. Discarding it is the session store's job, done before Route is
// called.
func (r *Router) Route(user *api.User, credential string) (Decision, error) {
	if user == nil || user.Role == "" {
		return Decision{}, ErrInvalidRole
	}

	switch {
	case user.Role == api.RoleAdmin:
		r.logger.Info("redirecting admin account to admin portal", "email", user.Email)
		r.metrics.ObserveRoleRedirect(api.RoleAdmin)
		return Decision{RedirectURL: r.handoffURL(r.adminPortalURL, credential), Role: api.RoleAdmin}, nil

	case user.Role == api.RoleDoctor || user.HasDoctorProfile():
		r.logger.Info("redirecting doctor account to doctor portal", "email", user.Email)
		r.metrics.ObserveRoleRedirect(api.RoleDoctor)
		return Decision{RedirectURL: r.handoffURL(r.doctorPortalURL, credential), Role: api.RoleDoctor}, nil

	case user.Role == api.RolePatient:
		return Decision{Admit: true, Role: api.RolePatient}, nil

	default:
		r.logger.Warn("unknown role, refusing to route", "role", user.Role)
		return Decision{}, ErrInvalidRole
	}
}

func (r *Router) handoffURL(portalURL, credential string) string {
	return fmt.Sprintf("%s/login?token=%s", portalURL, url.QueryEscape(credential))
}
