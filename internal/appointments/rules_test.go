package appointments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func appt(status Status, scheduledAt time.Time, reschedule RescheduleKind) Appointment {
	return Appointment{
		ID:          1,
		Status:      status,
		ScheduledAt: scheduledAt,
		Reschedule:  RescheduleState{Kind: reschedule},
	}
}

func TestCanCancel(t *testing.T) {
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name string
		a    Appointment
		want bool
	}{
		{"approved future", appt(StatusApproved, future, RescheduleNone), true},
		{"approved past", appt(StatusApproved, past, RescheduleNone), false},
		{"pending future", appt(StatusPending, future, RescheduleNone), false},
		{"cancelled future", appt(StatusCancelled, future, RescheduleNone), false},
		{"rejected future", appt(StatusRejected, future, RescheduleNone), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanCancel(tt.a, now))
		})
	}
}

func TestCanRate(t *testing.T) {
	tests := []struct {
		name string
		a    Appointment
		want bool
	}{
		{"approved past", appt(StatusApproved, now.Add(-time.Hour), RescheduleNone), true},
		{"approved future", appt(StatusApproved, now.Add(time.Hour), RescheduleNone), false},
		{"pending past", appt(StatusPending, now.Add(-time.Hour), RescheduleNone), false},
		{"cancelled past", appt(StatusCancelled, now.Add(-time.Hour), RescheduleNone), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanRate(tt.a, now))
		})
	}
}

func TestCanRequestReschedule(t *testing.T) {
	future := now.Add(time.Hour)

	assert.True(t, CanRequestReschedule(appt(StatusApproved, future, RescheduleNone), now))
	assert.True(t, CanRequestReschedule(appt(StatusApproved, future, RescheduleRejected), now))
	assert.True(t, CanRequestReschedule(appt(StatusApproved, future, RescheduleApproved), now))
	assert.False(t, CanRequestReschedule(appt(StatusApproved, future, ReschedulePendingRequest), now),
		"a second request cannot stack on a pending one")
	assert.False(t, CanRequestReschedule(appt(StatusPending, future, RescheduleNone), now))
	assert.False(t, CanRequestReschedule(appt(StatusApproved, now.Add(-time.Hour), RescheduleNone), now))
}

// Direct reschedule and reschedule negotiation apply to disjoint statuses,
// so no appointment ever offers both.
func TestRescheduleModesAreMutuallyExclusive(t *testing.T) {
	statuses := []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}
	kinds := []RescheduleKind{RescheduleNone, ReschedulePendingRequest, RescheduleApproved, RescheduleRejected}
	times := []time.Time{now.Add(-time.Hour), now.Add(time.Hour)}

	for _, status := range statuses {
		for _, kind := range kinds {
			for _, at := range times {
				a := appt(status, at, kind)
				direct := CanRescheduleDirect(a, now)
				negotiated := CanRequestReschedule(a, now)
				assert.False(t, direct && negotiated,
					"status=%s kind=%s at=%s offers both reschedule modes", status, kind, at)
			}
		}
	}
}

// Cancelling stays limited to approved future appointments and rating to
// approved past ones, so the two are never offered together either.
func TestCancelAndRateNeverOverlap(t *testing.T) {
	for _, at := range []time.Time{now.Add(-time.Hour), now.Add(time.Hour)} {
		a := appt(StatusApproved, at, RescheduleNone)
		assert.False(t, CanCancel(a, now) && CanRate(a, now))
	}
}

func TestPredicatesAtExactNow(t *testing.T) {
	a := appt(StatusApproved, now, RescheduleNone)
	assert.False(t, CanCancel(a, now), "scheduledAt must be strictly in the future")
	assert.False(t, CanRate(a, now), "scheduledAt must be strictly in the past")
}
