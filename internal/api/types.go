package api

import "time"

// Roles the backend may return for an authenticated user. The same backend
// serves the patient, doctor and admin portals.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// User is the backend's user record. It doubles as the authenticated
/// identity for a session: immutable once fetched, replaced wholesale on
// re-authentication.
type User struct {
	ID        int64          `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	FullName  string         `json:"full_name"`
	Phone     string         `json:"phone,omitempty"`
	Address   string         `json:"address,omitempty"`
	Role      string         `json:"role"`
	Doctor    *DoctorProfile `json:"doctor,omitempty"`
}

// HasDoctorProfile reports whether the account carries a doctor profile.
// Accounts with a doctor profile belong in the doctor portal even when
// their role field still reads patient (mid-upgrade accounts).
func (u *User) HasDoctorProfile() bool {
	return u != nil && u.Doctor != nil
}

// DoctorProfile is the doctor record attached to a user account.
type DoctorProfile struct {
	ID             int64  `json:"id"`
	Specialization string `json:"specialization"`
}

// Doctor is a doctor as returned by the doctor listing and detail endpoints.
type Doctor struct {
	ID             int64       `json:"id"`
	Specialization string      `json:"specialization"`
	Bio            string      `json:"bio,omitempty"`
	User           UserSummary `json:"user"`
}

// UserSummary is the trimmed user record nested inside doctor and review
// payloads.
type UserSummary struct {
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
}

// Appointment is the backend's appointment record.
type Appointment struct {
	ID                      int64      `json:"id"`
	Doctor                  Doctor     `json:"doctor"`
	AppointmentDate         time.Time  `json:"appointment_date"`
	Status                  string     `json:"status"`
	Notes                   string     `json:"notes,omitempty"`
	RejectionReason         string     `json:"rejection_reason,omitempty"`
	RescheduleRequestedDate *time.Time `json:"reschedule_requested_date,omitempty"`
	RescheduleReason        string     `json:"reschedule_reason,omitempty"`
	RescheduleStatus        string     `json:"reschedule_status,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
}

// Review is a doctor review.
type Review struct {
	ID            int64       `json:"id"`
	DoctorID      int64       `json:"doctor_id"`
	AppointmentID int64       `json:"appointment_id,omitempty"`
	Rating        int         `json:"rating"`
	Comment       string      `json:"comment"`
	User          UserSummary `json:"user"`
	CreatedAt     time.Time   `json:"created_at"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest is the payload for creating a patient account. The role
// is forced to patient by the client; this portal never registers other
// roles.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Role      string `json:"role"`
}

// ProfileUpdate is the payload for PATCH /users/me.
type ProfileUpdate struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// CreateAppointmentRequest is the payload for booking an appointment.
type CreateAppointmentRequest struct {
	DoctorID        int64     `json:"doctor_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	Notes           string    `json:"notes,omitempty"`
}

// ReviewRequest is the payload for posting a review. AppointmentID ties the
// review to the appointment being rated.
type ReviewRequest struct {
	DoctorID      int64  `json:"doctor_id"`
	AppointmentID int64  `json:"appointment_id"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
}

// ListAppointmentsOptions filters the appointment listing.
type ListAppointmentsOptions struct {
	DoctorID int64
	Status   string
}
