// Package session inspects bearer tokens so the capture engine can tell a
// dead session apart from a dead network before burning a round trip.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether the bearer token carries an exp claim in the
// past. The signature is not verified; the server remains the authority and
// this is only a local pre-flight so an expired session is reported as such
// instead of queued as a connectivity failure. Malformed tokens or tokens
// without an exp claim are treated as not locally expired and left for the
// server to judge.
func TokenExpired(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now)
}
