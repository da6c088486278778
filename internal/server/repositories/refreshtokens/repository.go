// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID that expires at expiresAt.
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// Find looks up a refresh token by its opaque token string.
	// It returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token and returns common.ErrorNotFound when
	// no row was removed, so a token can be consumed only once.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes every token that expired before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
