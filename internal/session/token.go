package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether the bearer token carries an exp claim that
// is already in the past. The token is parsed without verification: the
// backend remains the authority on validity, this only lets callers skip a
// round trip that is guaranteed to 401. Tokens that do not parse or carry
// no exp claim are not locally decidable and report false.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now)
}
