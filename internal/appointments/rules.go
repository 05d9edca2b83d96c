package appointments

import "time"

// Eligibility predicates. Each is a pure function of an appointment and
// the wall clock; the action handlers enforce exactly these, so an action
// that is not offered is also not reachable.

// CanCancel permits cancelling an approved appointment whose time has not
// yet arrived.
func CanCancel(a Appointment, now time.Time) bool {
	return a.Status == StatusApproved && a.ScheduledAt.After(now)
}

// CanRescheduleDirect permits rewriting the time of a pending appointment
// that is still in the future. No negotiation is involved.
func CanRescheduleDirect(a Appointment, now time.Time) bool {
	return a.Status == StatusPending && a.ScheduledAt.After(now)
}

// CanRequestReschedule permits opening a reschedule negotiation on an
// approved future appointment that has no request already pending.
func CanRequestReschedule(a Appointment, now time.Time) bool {
	return a.Status == StatusApproved &&
		a.Reschedule.Kind != ReschedulePendingRequest &&
		a.ScheduledAt.After(now)
}

// CanRate permits reviewing the doctor once an approved appointment's
// scheduled time has passed.
func CanRate(a Appointment, now time.Time) bool {
	return a.Status == StatusApproved && a.ScheduledAt.Before(now)
}
