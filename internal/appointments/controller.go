// Package appointments owns the state machine for the patient's
// appointments. The controller holds the in-memory list for the current
// identity and is the only writer of optimistic transitions; the backend
// stays the final arbiter, and every divergence is resolved by refetching
// the authoritative list.
package appointments

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/api"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/booking"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/session"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/pkg/logging"
)

// Backend is the slice of the API client the controller needs.
type Backend interface {
	ListAppointments(ctx context.Context, opts api.ListAppointmentsOptions) ([]api.Appointment, error)
	CreateAppointment(ctx context.Context, req api.CreateAppointmentRequest) (*api.Appointment, error)
	CancelAppointment(ctx context.Context, id int64) error
	RescheduleAppointment(ctx context.Context, id int64, newDate time.Time) error
	RequestReschedule(ctx context.Context, id int64, newDate time.Time, reason string) error
	CreateReview(ctx context.Context, req api.ReviewRequest) error
}

// Session is the slice of the session store the controller needs.
type Session interface {
	Status() session.Status
	Invalidate()
}

// Confirmer asks the user to confirm a destructive action. Presentation is
// out of scope; tests and headless callers inject their own.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Controller drives the appointment lifecycle for the logged-in patient.
type Controller struct {
	mu           sync.Mutex
	appointments []Appointment

	backend  Backend
	sessions Session
	confirm  Confirmer
	logger   *logging.Logger
	now      func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithConfirmer sets the confirmation prompt for cancellations. Without
// one, cancellations proceed unprompted.
func WithConfirmer(confirm Confirmer) Option {
	return func(c *Controller) { c.confirm = confirm }
}

func NewController(backend Backend, sessions Session, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		sessions: sessions,
		logger:   logging.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Appointments returns a snapshot of the current list.
func (c *Controller) Appointments() []Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Appointment, len(c.appointments))
	copy(out, c.appointments)
	return out
}

// Refresh replaces the local list with the backend's authoritative one.
// After a reschedule negotiation is approved the backend flips the
// appointment back to pending; that flip becomes visible only here, never
// by local assumption.
func (c *Controller) Refresh(ctx context.Context) ([]Appointment, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	wire, err := c.backend.ListAppointments(ctx, api.ListAppointmentsOptions{})
	if err != nil {
		return nil, c.mapError(err)
	}

	list := make([]Appointment, 0, len(wire))
	for _, w := range wire {
		list = append(list, fromWire(w))
	}

	c.mu.Lock()
	c.appointments = list
	c.mu.Unlock()
	return c.Appointments(), nil
}

// Book submits a new appointment request. On success the appointment
// joins the local list in pending state. Backend refusals (slot conflict,
// validation) are surfaced with the backend's own message.
func (c *Controller) Book(ctx context.Context, doctorID int64, scheduledAt time.Time, notes string) (*Appointment, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	if scheduledAt.IsZero() {
		return nil, booking.ErrDateRequired
	}
	if !scheduledAt.After(c.now()) {
		return nil, booking.ErrSlotInPast
	}

	wire, err := c.backend.CreateAppointment(ctx, api.CreateAppointmentRequest{
		DoctorID:        doctorID,
		AppointmentDate: scheduledAt,
		Notes:           notes,
	})
	if err != nil {
		return nil, c.mapError(err)
	}

	appt := fromWire(*wire)
	c.mu.Lock()
	c.appointments = append(c.appointments, appt)
	c.mu.Unlock()
	c.logger.Info("appointment booked", "appointment_id", appt.ID, "doctor_id", doctorID)
	return &appt, nil
}

// Cancel cancels an approved future appointment after user confirmation.
// The local status flips to cancelled optimistically and the list is then
// refetched to reconcile.
func (c *Controller) Cancel(ctx context.Context, id int64) error {
	if err := c.requireSession(); err != nil {
		return err
	}

	appt, err := c.find(id)
	if err != nil {
		return err
	}
	if !CanCancel(appt, c.now()) {
		return ErrNotCancellable
	}
	if c.confirm != nil && !c.confirm.Confirm("Are you sure you want to cancel this appointment?") {
		return ErrCancelDeclined
	}

	if err := c.backend.CancelAppointment(ctx, id); err != nil {
		return c.mapError(err)
	}

	c.mutate(id, func(a *Appointment) {
		a.Status = StatusCancelled
	})
	c.reconcile(ctx)
	return nil
}

// RescheduleDirect rewrites the scheduled time of a pending appointment.
// The reschedule negotiation sub-state is untouched.
func (c *Controller) RescheduleDirect(ctx context.Context, id int64, newScheduledAt time.Time) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if !newScheduledAt.After(c.now()) {
		return booking.ErrSlotInPast
	}

	appt, err := c.find(id)
	if err != nil {
		return err
	}
	if !CanRescheduleDirect(appt, c.now()) {
		return ErrNotReschedulable
	}

	if err := c.backend.RescheduleAppointment(ctx, id, newScheduledAt); err != nil {
		return c.mapError(err)
	}

	c.mutate(id, func(a *Appointment) {
		a.ScheduledAt = newScheduledAt
	})
	c.reconcile(ctx)
	return nil
}

// RequestReschedule opens a reschedule negotiation on an approved
// appointment. The doctor resolves it out of band; an approval flips the
// appointment back to pending on the backend, which the next Refresh
// picks up.
func (c *Controller) RequestReschedule(ctx context.Context, id int64, newScheduledAt time.Time, reason string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if err := booking.ValidateRescheduleReason(reason); err != nil {
		return err
	}
	if !newScheduledAt.After(c.now()) {
		return booking.ErrSlotInPast
	}

	appt, err := c.find(id)
	if err != nil {
		return err
	}
	if !CanRequestReschedule(appt, c.now()) {
		return ErrNotReschedulable
	}

	if err := c.backend.RequestReschedule(ctx, id, newScheduledAt, reason); err != nil {
		return c.mapError(err)
	}

	c.mutate(id, func(a *Appointment) {
		a.Reschedule = RescheduleState{
			Kind:          ReschedulePendingRequest,
			RequestedDate: &newScheduledAt,
			Reason:        reason,
		}
	})
	c.reconcile(ctx)
	return nil
}

// Rate posts a review for the doctor of a completed appointment.
func (c *Controller) Rate(ctx context.Context, id, doctorID int64, rating int, comment string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	if strings.TrimSpace(comment) == "" {
		return ErrCommentRequired
	}

	appt, err := c.find(id)
	if err != nil {
		return err
	}
	if !CanRate(appt, c.now()) {
		return ErrNotRateable
	}

	if err := c.backend.CreateReview(ctx, api.ReviewRequest{
		DoctorID:      doctorID,
		AppointmentID: id,
		Rating:        rating,
		Comment:       comment,
	}); err != nil {
		return c.mapError(err)
	}

	c.reconcile(ctx)
	return nil
}

func (c *Controller) requireSession() error {
	if c.sessions.Status() != session.StatusValid {
		return session.ErrUnauthenticated
	}
	return nil
}

// mapError turns an unauthorized backend response into a session
// invalidation plus ErrUnauthenticated; everything else passes through
// untouched so the backend's message reaches the user verbatim and local
// state stays as it was.
func (c *Controller) mapError(err error) error {
	if api.IsUnauthorized(err) {
		c.sessions.Invalidate()
		return session.ErrUnauthenticated
	}
	return err
}

func (c *Controller) find(id int64) (Appointment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return Appointment{}, ErrNotFound
}

func (c *Controller) mutate(id int64, fn func(*Appointment)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.appointments {
		if c.appointments[i].ID == id {
			fn(&c.appointments[i])
			return
		}
	}
}

// reconcile refetches the authoritative list after a mutation. A failed
// refetch keeps the optimistic state; the next successful Refresh
// supersedes it.
func (c *Controller) reconcile(ctx context.Context) {
	if _, err := c.Refresh(ctx); err != nil {
		c.logger.Warn("refetch after mutation failed, keeping optimistic state", "error", err)
	}
}
