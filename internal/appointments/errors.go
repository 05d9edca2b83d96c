package appointments

import "errors"

var (
	ErrNotFound         = errors.New("appointment not found")
	ErrNotCancellable   = errors.New("appointment can no longer be cancelled")
	ErrNotReschedulable = errors.New("appointment cannot be rescheduled")
	ErrNotRateable      = errors.New("appointment cannot be rated yet")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrCommentRequired  = errors.New("a review comment is required")
	ErrCancelDeclined   = errors.New("cancellation was not confirmed")
)
