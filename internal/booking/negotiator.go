// Package booking validates prospective appointment slots before anything
// goes over the wire, and pre-flights the session right before a booking
// so a stale credential is caught without burning a doomed request.
package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/api"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/session"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/pkg/logging"
)

// Local validation errors. None of these ever reach the network.
var (
	ErrDateRequired   = errors.New("a date must be selected")
	ErrInvalidTime    = errors.New("time must be in HH:MM format")
	ErrSlotInPast     = errors.New("the selected date and time must be in the future")
	ErrReasonRequired = errors.New("a reason for rescheduling is required")
)

// CombineSlot resolves a selected date and an "HH:MM" time into a single
// timestamp and requires it to be strictly in the future as of now. The
// future check runs against the time of the call, not the time of
// selection: time passes between picking a slot and clicking submit.
func CombineSlot(date time.Time, clock string, now time.Time) (time.Time, error) {
	if date.IsZero() {
		return time.Time{}, ErrDateRequired
	}
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	combined := time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location())
	if !combined.After(now) {
		return time.Time{}, ErrSlotInPast
	}
	return combined, nil
}

// ValidateRescheduleReason rejects empty or whitespace-only reasons.
func ValidateRescheduleReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	return nil
}

// Sessions is the slice of the session store the negotiator needs.
type Sessions interface {
	Token() string
	TokenExpired() bool
	Invalidate()
}

// Liveness checks that the held credential still authenticates.
type Liveness interface {
	Me(ctx context.Context) (*api.User, error)
}

// Negotiator gates booking submissions.
type Negotiator struct {
	sessions Sessions
	client   Liveness
	logger   *logging.Logger
	now      func() time.Time
}

// Option configures a Negotiator.
type Option func(*Negotiator)

func WithLogger(logger *logging.Logger) Option {
	return func(n *Negotiator) { n.logger = logger }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(n *Negotiator) { n.now = now }
}

func NewNegotiator(sessions Sessions, client Liveness, opts ...Option) *Negotiator {
	n := &Negotiator{
		sessions: sessions,
		client:   client,
		logger:   logging.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ValidateSlot combines a selected date and time, checking against the
// negotiator's clock at the moment of submission.
func (n *Negotiator) ValidateSlot(date time.Time, clock string) (time.Time, error) {
	return CombineSlot(date, clock, n.now())
}

// PreflightBook verifies the session immediately before a booking request.
// A missing credential aborts straight to the login prompt; a visibly
// expired one is invalidated without a round trip; otherwise /auth/me
// confirms the backend still honors it. Transient failures pass through
// so the user can retry, never forcing a logout.
func (n *Negotiator) PreflightBook(ctx context.Context) error {
	if n.sessions.Token() == "" {
		return session.ErrUnauthenticated
	}
	if n.sessions.TokenExpired() {
		n.logger.Info("credential expired locally, skipping liveness round trip")
		n.sessions.Invalidate()
		return session.ErrUnauthenticated
	}

	if _, err := n.client.Me(ctx); err != nil {
		if api.IsUnauthorized(err) {
			return session.ErrUnauthenticated
		}
		return err
	}
	return nil
}
