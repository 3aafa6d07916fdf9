package app

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"huski_bookings/internal/domain"
)

const (
	sessionTokenTTL    = time.Hour
	activationTokenTTL = 30 * time.Minute
	resetTokenTTL      = 30 * time.Minute
)

// TokenService mints and checks the three token kinds: session tokens for
// API calls, activation tokens mailed on registration, and password-reset
// tokens. Reset tokens are signed with secret+current password hash, so a
// token issued before a password change fails signature verification after
// it — old reset links cannot be replayed.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), now: time.Now}
}

type SessionClaims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type activationClaims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

type resetClaims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (t *TokenService) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := t.now()
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.New().String(),
	}
}

func (t *TokenService) Session(userID int64, role string) (string, error) {
	claims := SessionClaims{UserID: userID, Role: role, RegisteredClaims: t.registered(sessionTokenTTL)}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenService) ParseSession(token string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := t.parse(token, &claims, t.secret); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (t *TokenService) Activation(userID int64, email string) (string, error) {
	claims := activationClaims{UserID: userID, Email: email, Kind: "activation",
		RegisteredClaims: t.registered(activationTokenTTL)}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenService) ParseActivation(token string) (int64, error) {
	var claims activationClaims
	if err := t.parse(token, &claims, t.secret); err != nil {
		return 0, err
	}
	if claims.Kind != "activation" {
		return 0, domain.ErrInvalidToken
	}
	return claims.UserID, nil
}

// Reset mints a password-reset token scoped to the user's current hash.
func (t *TokenService) Reset(userID int64, email, passwordHash string) (string, error) {
	claims := resetClaims{UserID: userID, Email: email, RegisteredClaims: t.registered(resetTokenTTL)}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.resetSecret(passwordHash))
}

// VerifyReset checks a reset token against the user's current hash.
func (t *TokenService) VerifyReset(token string, userID int64, passwordHash string) error {
	var claims resetClaims
	if err := t.parse(token, &claims, t.resetSecret(passwordHash)); err != nil {
		return err
	}
	if claims.UserID != userID {
		return domain.ErrInvalidToken
	}
	return nil
}

func (t *TokenService) resetSecret(passwordHash string) []byte {
	return append(append([]byte{}, t.secret...), []byte(passwordHash)...)
}

func (t *TokenService) parse(token string, claims jwt.Claims, key []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(tok *jwt.Token) (any, error) {
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
			}
			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return domain.ErrInvalidToken
	}
	return nil
}
