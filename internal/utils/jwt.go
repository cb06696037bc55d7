package utils // package utils provides helpers for token creation, verification and hashing

import (
	"crypto/sha256" // SHA-256 hashing for stored refresh tokens
	"encoding/hex"  // hex encoding of digests
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// SignedToken is a serialized HS256 JWT together with its expiry.  The
// same shape is used for access and refresh tokens; they differ only in
// the secret they were signed with and how long they live.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// ErrInvalidToken is returned for every verification fault: bad signature,
// wrong algorithm, malformed claims or expiry.  Callers must not surface a
// more specific reason to clients.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken signs a short-lived HS256 JWT for a user.  Claims are the
// minimum the middleware needs: subject (sub), issued at (iat) and
// expiration (exp).
func NewAccessToken(secret, userID string, ttl time.Duration) (SignedToken, error) {
	return signToken(secret, userID, ttl)
}

// NewRefreshToken signs a long-lived HS256 JWT for a user with the same
// minimal claims but a distinct secret.  The raw string goes back to the
// client; only its SHA-256 hash is persisted.
func NewRefreshToken(secret, userID string, ttl time.Duration) (SignedToken, error) {
	return signToken(secret, userID, ttl)
}

func signToken(secret, userID string, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyToken parses and validates a signed token against the given secret
// and returns the embedded user id.  Any fault, expiry included, collapses
// into ErrInvalidToken.
func VerifyToken(secret, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// HashRefreshRaw returns the SHA-256 hash of a raw refresh token as a hex
// string.  Only the hash is stored, so a leaked database row cannot be
// replayed as a session.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
