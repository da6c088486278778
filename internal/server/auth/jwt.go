// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultIssuer is the iss claim used when no issuer is configured.
const DefaultIssuer = "todokeeper"

// Claims carries the user's email as subject and the numeric id as uid.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// TokenManager signs and verifies HS256 access tokens with a fixed TTL.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type Option func(*TokenManager)

func WithIssuer(issuer string) Option {
	return func(m *TokenManager) { m.issuer = issuer }
}

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) { m.now = now }
}

func NewTokenManager(secret []byte, ttl time.Duration, opts ...Option) *TokenManager {
	m := &TokenManager{
		secret: secret,
		ttl:    ttl,
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// TTL is the lifetime of every issued token.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a new token for user. Every call gets its own iat, exp and jti.
func (m *TokenManager) Issue(user *models.User) (string, time.Time, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate id: %w", err)
	}

	now := m.now()
	exp := jwt.NewNumericDate(now.Add(m.ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.String(),
			Issuer:    m.issuer,
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: exp,
		},
		UserID: user.ID,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp.Time, nil
}

// Verify checks the signature, algorithm, issuer and expiry of tokenString.
// It returns common.ErrTokenSignatureInvalid for a bad signature or a
// non-HS256 algorithm, common.ErrTokenExpired once exp has passed and
// common.ErrInvalidToken for anything else.
func (m *TokenManager) Verify(tokenString string) (models.Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return models.Principal{}, common.ErrTokenSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return models.Principal{}, common.ErrTokenExpired
		default:
			return models.Principal{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
		}
	}

	if !token.Valid || claims.Subject == "" || claims.UserID == 0 {
		return models.Principal{}, common.ErrInvalidToken
	}

	return models.Principal{UserID: claims.UserID, Email: claims.Subject}, nil
}
