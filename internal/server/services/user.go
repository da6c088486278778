// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and issuing/refreshing JWTs
// plus server-stored refresh tokens.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/lockout"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
)

const refreshTokenSize = 32

// TokenIssuer mints access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
	TTL() time.Duration
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	ExpiresAt    time.Time
	ExpiresIn    int64 // seconds
	RefreshToken string
}

// UserService provides authentication-related operations:
// - Register: create users
// - Authenticate / Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
type UserService struct {
	repomanager                  repomanager.RepositoryManager
	tokens                       TokenIssuer
	hasher                       *auth.PasswordHasher
	locks                        lockout.Store
	refreshTokenValidityDuration time.Duration
	log                          logging.Logger
	now                          func() time.Time
}

// NewUserService constructs a UserService. A nil locks disables lockout
// and a nil log discards output.
func NewUserService(m repomanager.RepositoryManager, tokens TokenIssuer, locks lockout.Store, cfg *config.Config, log logging.Logger) *UserService {
	if locks == nil {
		locks = lockout.NewMemoryStore(0, 0)
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &UserService{
		repomanager:                  m,
		tokens:                       tokens,
		hasher:                       auth.NewPasswordHasher(nil),
		locks:                        locks,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		log:                          log.With("component", "users"),
		now:                          time.Now,
	}
}

// UseHasher replaces the password hasher, e.g. to tune argon2id cost.
func (s *UserService) UseHasher(h *auth.PasswordHasher) {
	s.hasher = h
}

// Register creates a new identity and returns its id. An email that is
// already registered yields common.ErrDuplicateIdentity.
func (s *UserService) Register(ctx context.Context, fullName, email, password string) (int64, error) {
	repo := s.repomanager.Users(s.repomanager.Conn())

	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return 0, common.ErrDuplicateIdentity
	case !errors.Is(err, common.ErrorNotFound):
		return 0, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{FullName: fullName, Email: email, PasswordHash: hash})
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return 0, common.ErrDuplicateIdentity
		}
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u.ID, nil
}

// Authenticate checks email and password and returns the stored identity.
// Unknown emails and wrong passwords both yield common.ErrInvalidCredential.
// Locked accounts yield common.ErrAccountLocked.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	locked, retryIn, err := s.locks.IsLocked(ctx, email)
	if err != nil {
		s.log.Warn(ctx, "lockout store unavailable", "error", err)
	} else if locked {
		s.log.Info(ctx, "login rejected while locked out", "retry_in", retryIn.String())
		return nil, common.ErrAccountLocked
	}

	repo := s.repomanager.Users(s.repomanager.Conn())

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// match the cost of a known email
			if dummy, derr := s.hasher.Dummy(); derr == nil {
				_, _ = s.hasher.Compare(password, dummy)
			}
			s.recordFailure(ctx, email)
			return nil, common.ErrInvalidCredential
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	ok, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error comparing password: %w", err)
	}
	if !ok {
		s.recordFailure(ctx, email)
		return nil, common.ErrInvalidCredential
	}

	if user.Locked {
		return nil, common.ErrAccountLocked
	}

	if err := s.locks.RecordSuccess(ctx, email); err != nil {
		s.log.Warn(ctx, "lockout store unavailable", "error", err)
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	// the identity may have been removed since the credential check
	current, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	return current, nil
}

// Login authenticates the caller and returns a new TokenPair.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	pair, err := s.generateTokenPair(ctx, user, s.repomanager.Conn())
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return pair, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Unknown tokens yield common.ErrInvalidToken and
// expired ones common.ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		token, err := repo.Find(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error searching refresh token: %w", err)
		}
		if token.Expired(s.now()) {
			return common.ErrRefreshTokenExpired
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrIdentityNotFound
			}
			return fmt.Errorf("error looking up user: %w", err)
		}
		if user.Locked {
			return common.ErrAccountLocked
		}

		// a concurrent rotation may have consumed it since Find
		if err := repo.Delete(ctx, refreshToken); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		pair, err = s.generateTokenPair(ctx, user, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// PurgeExpiredRefreshTokens deletes refresh tokens whose expiry has passed.
func (s *UserService) PurgeExpiredRefreshTokens(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.repomanager.Conn()).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("error purging refresh tokens: %w", err)
	}
	return n, nil
}

// --- helpers below ---

func (s *UserService) recordFailure(ctx context.Context, email string) {
	if err := s.locks.RecordFailure(ctx, email); err != nil {
		s.log.Warn(ctx, "lockout store unavailable", "error", err)
	}
}

// rehash upgrades a legacy hash; failure only costs another upgrade attempt
// on the next login.
func (s *UserService) rehash(ctx context.Context, userID int64, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Warn(ctx, "password rehash failed", "user_id", userID, "error", err)
		return
	}
	if err := s.repomanager.Users(s.repomanager.Conn()).UpdatePasswordHash(ctx, userID, hash); err != nil {
		s.log.Warn(ctx, "password rehash failed", "user_id", userID, "error", err)
		return
	}
	s.log.Info(ctx, "password hash upgraded", "user_id", userID)
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, db dbx.DBTX) (*TokenPair, error) {
	access, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}

	refresh, err := common.MakeRandHexString(refreshTokenSize)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	expires := s.now().Add(s.refreshTokenValidityDuration)
	if err := s.repomanager.RefreshTokens(db).Create(ctx, user.ID, refresh, expires); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		ExpiresAt:    expiresAt,
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		RefreshToken: refresh,
	}, nil
}
