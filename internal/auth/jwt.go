package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie the token is mirrored into for browser clients.
const CookieName = "jwt_token"

// JWT signs and verifies HS256 access tokens carrying the user id in the
// standard "sub" claim plus an "email" claim.
type JWT struct {
	secret []byte
	ttl    time.Duration
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{secret: []byte(secret), ttl: ttl}
}

type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Sign issues a token for the given user. The second return value is the
// unix expiry timestamp, echoed to clients.
func (j *JWT) Sign(userID uuid.UUID, email string) (string, int64, error) {
	expiresAt := time.Now().Add(j.ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt.Unix(), nil
}

// Parse validates a token and extracts the user identity.
func (j *JWT) Parse(token string) (uuid.UUID, *Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return uuid.Nil, nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return uuid.Nil, nil, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, errors.New("token missing user identifier")
	}

	return userID, claims, nil
}

// TTL reports the configured token lifetime.
func (j *JWT) TTL() time.Duration {
	return j.ttl
}
