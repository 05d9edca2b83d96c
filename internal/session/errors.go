package session

import "errors"

var (
	// ErrRoleMismatch means an authenticated identity does not belong in
	// the patient portal. The caller is expected to hand the identity to
	// the role router instead of admitting it.
	ErrRoleMismatch = errors.New("only patients can use this portal")

	// ErrUnauthenticated means no valid session is held. Operations that
	// see it should route the user to the login prompt.
	ErrUnauthenticated = errors.New("not authenticated")
)
