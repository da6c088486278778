package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

var alice = &models.User{ID: 7, Email: "Alice@Example.com"}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	m := NewTokenManager([]byte("super-secret"), time.Hour)

	tok, exp, err := m.Issue(alice)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if time.Until(exp) <= 59*time.Minute {
		t.Fatalf("unexpected expiry %v", exp)
	}

	p, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if p.Email != alice.Email || p.UserID != alice.ID {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestIssue_FreshTokenEachCall(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager([]byte("k"), time.Minute, WithClock(func() time.Time { return now }))

	t1, e1, err := m.Issue(alice)
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(5 * time.Second)
	t2, e2, err := m.Issue(alice)
	if err != nil {
		t.Fatal(err)
	}
	if t1 == t2 {
		t.Fatalf("tokens must differ")
	}
	if !e2.After(e1) {
		t.Fatalf("second expiry %v not after first %v", e2, e1)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager([]byte("secret"), time.Minute, WithClock(func() time.Time { return now }))

	tok, _, err := m.Issue(alice)
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(time.Minute)
	_, err = m.Verify(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired at exp, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenManager([]byte("right-secret"), time.Hour).Issue(alice)
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewTokenManager([]byte("wrong-secret"), time.Hour).Verify(tok)
	if !errors.Is(err, common.ErrTokenSignatureInvalid) {
		t.Fatalf("expected common.ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestVerify_ExpiredAndWrongSecretReportsSignature(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenManager([]byte("a"), -time.Minute).Issue(alice)
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewTokenManager([]byte("b"), time.Hour).Verify(tok)
	if !errors.Is(err, common.ErrTokenSignatureInvalid) {
		t.Fatalf("expected signature error, got %v", err)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   alice.Email,
			Issuer:    DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: alice.ID,
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	m := NewTokenManager(secret, time.Hour)
	for name, tok := range map[string]string{"HS512": hs512, "none": none} {
		if _, err := m.Verify(tok); !errors.Is(err, common.ErrTokenSignatureInvalid) {
			t.Errorf("%s: expected common.ErrTokenSignatureInvalid, got %v", name, err)
		}
	}
}

func TestVerify_MissingClaims(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	m := NewTokenManager(secret, time.Hour)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: DefaultIssuer},
		UserID:           1,
	}).SignedString(secret)
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: DefaultIssuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           1,
	}).SignedString(secret)
	otherIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           1,
	}).SignedString(secret)

	for name, tok := range map[string]string{"no exp": noExp, "no subject": noSubject, "other issuer": otherIssuer} {
		if _, err := m.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
			t.Errorf("%s: expected common.ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestVerify_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager([]byte("k"), time.Hour).Verify("not.a.jwt")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}
