package session

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

var nowFunc = time.Now // mockable

// Claims are the claims the backend puts in its bearer credentials.
type Claims struct {
	jwt.StandardClaims
	UserID string `json:"user_id,omitempty"`
	Role   Role   `json:"role,omitempty"`
}

// peekClaims decodes the credential without verifying its signature:
// the client does not hold the signing key, the backend stays the judge.
// ok is false for credentials that are not JWTs.
func peekClaims(credential string) (claims Claims, ok bool) {
	if _, _, err := new(jwt.Parser).ParseUnverified(credential, &claims); err != nil {
		return Claims{}, false
	}
	return claims, true
}

// credentialExpired reports whether credential is a JWT whose expiry has passed.
// Opaque credentials are never considered expired.
func credentialExpired(credential string) bool {
	claims, ok := peekClaims(credential)
	if !ok || claims.ExpiresAt == 0 {
		return false
	}
	return !claims.VerifyExpiresAt(nowFunc().Unix(), true)
}

// ExpiresAt returns the expiry of a JWT credential, if any.
func ExpiresAt(credential string) (time.Time, bool) {
	claims, ok := peekClaims(credential)
	if !ok || claims.ExpiresAt == 0 {
		return time.Time{}, false
	}
	return time.Unix(claims.ExpiresAt, 0), true
}
