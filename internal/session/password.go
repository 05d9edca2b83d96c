package session

import "errors"

var (
	ErrPasswordTooShort = errors.New("session: password must be at least 6 characters")
	ErrPasswordMismatch = errors.New("session: passwords do not match")
)

// ValidateNewPassword applies the reset form rules before the new password
// goes to the backend.
func ValidateNewPassword(password, confirm string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
