package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes new passwords with argon2id. Compare also accepts
// bcrypt hashes ($2a$, $2b$, $2y$) written by earlier deployments.
type PasswordHasher struct {
	params *argon2id.Params

	dummyOnce sync.Once
	dummy     string
	dummyErr  error
}

func NewPasswordHasher(params *argon2id.Params) *PasswordHasher {
	if params == nil {
		params = argon2id.DefaultParams
	}
	return &PasswordHasher{params: params}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, h.params)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// Compare reports whether password matches hash. A malformed hash is an error.
func (h *PasswordHasher) Compare(password, hash string) (bool, error) {
	if isBcrypt(hash) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to compare password: %w", err)
		}
		return true, nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
	return match, nil
}

// Dummy returns a fixed argon2id hash built with h's parameters, created on
// first use. Comparing against it costs the same as a real comparison, so a
// caller can spend that time when no stored hash exists.
func (h *PasswordHasher) Dummy() (string, error) {
	h.dummyOnce.Do(func() {
		h.dummy, h.dummyErr = h.Hash("dummy-password-never-matches")
	})
	return h.dummy, h.dummyErr
}

// NeedsRehash reports whether hash was produced by the legacy algorithm.
func (h *PasswordHasher) NeedsRehash(hash string) bool {
	return isBcrypt(hash)
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}
