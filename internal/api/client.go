// Package api is the HTTP client for the scheduling backend. The backend
// owns persistence and authorization; this client stamps the bearer
// credential on outbound requests, interprets responses, and funnels every
// unauthorized response into a single hook so the session layer can react
// no matter which operation triggered it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/observability/metrics"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/pkg/logging"
)

// TokenSource supplies the current bearer credential. An empty string
// means no credential is held and the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Client is an HTTP client for the scheduling backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         *logging.Logger
	tokens         TokenSource
	onUnauthorized func()
	metrics        *metrics.ClientMetrics
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTokenSource sets the credential supplier for authenticated requests.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithUnauthorizedHook sets the callback invoked whenever an authenticated
// request comes back 401. The session store registers its Invalidate here.
func WithUnauthorizedHook(hook func()) ClientOption {
	return func(c *Client) {
		c.onUnauthorized = hook
	}
}

// WithMetrics attaches request counters.
func WithMetrics(m *metrics.ClientMetrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a backend client.
// baseURL is the backend root (e.g. "http://localhost:3000").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logging.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) bearer() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// do performs one request. bearer == "" sends it unauthenticated. A 401 on
// an authenticated request fires the unauthorized hook before returning.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any, bearer string) error {
	var bodyReader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("api: marshal %s %s request: %w", method, path, err)
		}
		bodyReader = bytes.NewReader(body)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("api: create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeFailure(resp, method, path, bearer)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("api: decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) decodeFailure(resp *http.Response, method, path, bearer string) error {
	var msg string
	if data, err := io.ReadAll(resp.Body); err == nil && len(data) > 0 {
		var body errorBody
		if json.Unmarshal(data, &body) == nil {
			msg = body.message()
		}
	}

	if resp.StatusCode == http.StatusUnauthorized && bearer != "" {
		c.logger.Warn("unauthorized response, invalidating session", "method", method, "path", path)
		c.metrics.ObserveAuthFailure()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}

	return &Error{StatusCode: resp.StatusCode, Message: msg}
}

func (c *Client) observe(route string, err error) {
	outcome := "success"
	switch {
	case IsUnauthorized(err):
		outcome = "unauthorized"
	case IsBackendRejection(err):
		outcome = "rejected"
	case err != nil:
		outcome = "transient"
	}
	c.metrics.ObserveRequest(route, outcome)
}

// userEnvelope wraps responses of the form {"user": {...}}.
type userEnvelope struct {
	User *User `json:"user"`
}

// Login authenticates with email and password. A failed login does not
// carry a credential, so it never fires the unauthorized hook.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	payload := map[string]string{"email": email, "password": password}
	var auth AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, payload, &auth, "")
	c.observe("auth.login", err)
	if err != nil {
		return nil, err
	}
	return &auth, nil
}

// Register creates a new account. The role is forced to patient.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Role = RolePatient
	var auth AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, map[string]any{"user": req}, &auth, "")
	c.observe("auth.register", err)
	if err != nil {
		return nil, err
	}
	return &auth, nil
}

// Me resolves the identity behind the currently held credential. Used at
// startup and as a liveness check right before a booking.
func (c *Client) Me(ctx context.Context) (*User, error) {
	return c.me(ctx, c.bearer())
}

// MeWithToken resolves the identity behind an explicit credential, used for
// tokens that are not (yet) the session's own, such as cross-portal
// handoffs.
func (c *Client) MeWithToken(ctx context.Context, token string) (*User, error) {
	return c.me(ctx, token)
}

func (c *Client) me(ctx context.Context, bearer string) (*User, error) {
	var env userEnvelope
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &env, bearer)
	c.observe("auth.me", err)
	if err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, fmt.Errorf("api: /auth/me returned no user")
	}
	return env.User, nil
}

// UpdateProfile updates the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var env userEnvelope
	err := c.do(ctx, http.MethodPatch, "/users/me", nil, map[string]any{"user": update}, &env, c.bearer())
	c.observe("users.update", err)
	if err != nil {
		return nil, err
	}
	return env.User, nil
}

// RequestPasswordReset asks the backend to email reset instructions.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	err := c.do(ctx, http.MethodPost, "/password_resets", nil, map[string]string{"email": email}, nil, "")
	c.observe("password_resets.create", err)
	return err
}

// ResetPassword completes a password reset with the emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	payload := map[string]string{"token": token, "password": password}
	err := c.do(ctx, http.MethodPatch, "/password_resets", nil, payload, nil, "")
	c.observe("password_resets.update", err)
	return err
}

// ListDoctors fetches doctors. limit <= 0 means no limit.
func (c *Client) ListDoctors(ctx context.Context, limit int) ([]Doctor, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var doctors []Doctor
	err := c.do(ctx, http.MethodGet, "/doctors", query, nil, &doctors, "")
	c.observe("doctors.list", err)
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

// SearchDoctors searches doctors by free-text query and/or specialization.
func (c *Client) SearchDoctors(ctx context.Context, search, specialization string) ([]Doctor, error) {
	query := url.Values{}
	if search != "" {
		query.Set("query", search)
	}
	if specialization != "" {
		query.Set("specialization", specialization)
	}
	var doctors []Doctor
	err := c.do(ctx, http.MethodGet, "/doctors/search", query, nil, &doctors, "")
	c.observe("doctors.search", err)
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

// GetDoctor fetches a single doctor.
func (c *Client) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	var doctor Doctor
	err := c.do(ctx, http.MethodGet, "/doctors/"+strconv.FormatInt(id, 10), nil, nil, &doctor, "")
	c.observe("doctors.get", err)
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

// ListAppointments fetches the authenticated patient's appointments.
func (c *Client) ListAppointments(ctx context.Context, opts ListAppointmentsOptions) ([]Appointment, error) {
	query := url.Values{}
	if opts.DoctorID != 0 {
		query.Set("doctor_id", strconv.FormatInt(opts.DoctorID, 10))
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	var appointments []Appointment
	err := c.do(ctx, http.MethodGet, "/appointments", query, nil, &appointments, c.bearer())
	c.observe("appointments.list", err)
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// CreateAppointment books an appointment.
func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*Appointment, error) {
	var appt Appointment
	err := c.do(ctx, http.MethodPost, "/appointments", nil, map[string]any{"appointment": req}, &appt, c.bearer())
	c.observe("appointments.create", err)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// CancelAppointment cancels an appointment.
func (c *Client) CancelAppointment(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/appointments/%d/cancel", id)
	err := c.do(ctx, http.MethodPost, path, nil, nil, nil, c.bearer())
	c.observe("appointments.cancel", err)
	return err
}

// RescheduleAppointment rewrites the scheduled time of a pending
// appointment.
func (c *Client) RescheduleAppointment(ctx context.Context, id int64, newDate time.Time) error {
	path := fmt.Sprintf("/appointments/%d/reschedule", id)
	payload := map[string]any{"appointment_date": newDate.UTC().Format(time.RFC3339)}
	err := c.do(ctx, http.MethodPost, path, nil, payload, nil, c.bearer())
	c.observe("appointments.reschedule", err)
	return err
}

// RequestReschedule submits a reschedule request for an approved
// appointment; the doctor resolves it out of band.
func (c *Client) RequestReschedule(ctx context.Context, id int64, newDate time.Time, reason string) error {
	path := fmt.Sprintf("/appointments/%d/request_reschedule", id)
	payload := map[string]any{
		"appointment_date":  newDate.UTC().Format(time.RFC3339),
		"reschedule_reason": reason,
	}
	err := c.do(ctx, http.MethodPost, path, nil, payload, nil, c.bearer())
	c.observe("appointments.request_reschedule", err)
	return err
}

// CreateReview posts a review for a doctor tied to an appointment.
func (c *Client) CreateReview(ctx context.Context, req ReviewRequest) error {
	err := c.do(ctx, http.MethodPost, "/reviews", nil, map[string]any{"review": req}, nil, c.bearer())
	c.observe("reviews.create", err)
	return err
}

// ListReviews fetches reviews, optionally filtered by doctor and limited.
func (c *Client) ListReviews(ctx context.Context, doctorID int64, limit int) ([]Review, error) {
	query := url.Values{}
	if doctorID != 0 {
		query.Set("doctor_id", strconv.FormatInt(doctorID, 10))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var reviews []Review
	err := c.do(ctx, http.MethodGet, "/reviews", query, nil, &reviews, "")
	c.observe("reviews.list", err)
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
