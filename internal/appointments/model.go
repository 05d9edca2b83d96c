package appointments

import (
	"time"

	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/api"
)

// Status is an appointment's lifecycle state. Cancellation is terminal;
// appointments are never deleted client-side.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// RescheduleKind is the state of a reschedule negotiation on an approved
// appointment.
type RescheduleKind string

const (
	RescheduleNone           RescheduleKind = "none"
	ReschedulePendingRequest RescheduleKind = "pending"
	RescheduleApproved       RescheduleKind = "approved"
	RescheduleRejected       RescheduleKind = "rejected"
)

// RescheduleState tracks a reschedule negotiation. RequestedDate is
// present whenever Kind is ReschedulePendingRequest.
type RescheduleState struct {
	Kind          RescheduleKind
	RequestedDate *time.Time
	Reason        string
}

// Appointment is the client-side view of one appointment.
type Appointment struct {
	ID              int64
	DoctorID        int64
	DoctorName      string
	Specialization  string
	ScheduledAt     time.Time
	Status          Status
	Notes           string
	RejectionReason string
	Reschedule      RescheduleState
	CreatedAt       time.Time
}

// fromWire maps a backend appointment record onto the client model. An
// empty reschedule status on the wire means no negotiation exists.
func fromWire(w api.Appointment) Appointment {
	kind := RescheduleNone
	switch w.RescheduleStatus {
	case "pending":
		kind = ReschedulePendingRequest
	case "approved":
		kind = RescheduleApproved
	case "rejected":
		kind = RescheduleRejected
	}
	return Appointment{
		ID:              w.ID,
		DoctorID:        w.Doctor.ID,
		DoctorName:      w.Doctor.User.FullName,
		Specialization:  w.Doctor.Specialization,
		ScheduledAt:     w.AppointmentDate,
		Status:          Status(w.Status),
		Notes:           w.Notes,
		RejectionReason: w.RejectionReason,
		Reschedule: RescheduleState{
			Kind:          kind,
			RequestedDate: w.RescheduleRequestedDate,
			Reason:        w.RescheduleReason,
		},
		CreatedAt: w.CreatedAt,
	}
}
