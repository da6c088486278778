// Package session keeps the CLI login between runs: the account email and
// the current refresh token, stored in a local SQLite file.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/todokeeper/internal/client/session/migrations"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"

	_ "modernc.org/sqlite"
)

const (
	keyEmail        = "email"
	keyRefreshToken = "refresh_token"
)

// Session is what survives a restart. The access token is never stored.
type Session struct {
	Email        string
	RefreshToken string
}

func (s Session) Empty() bool { return s.RefreshToken == "" }

type Store struct {
	db   *sql.DB
	repo Repository
}

// Open opens (creating if needed) the session database at path and applies
// its migrations. ":memory:" gives a throwaway store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// a second pooled connection would see a different :memory: database
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session migrations: %w", err)
	}
	return &Store{db: db, repo: NewSQLiteRepository(db)}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}

func (s *Store) Load(ctx context.Context) (Session, error) {
	email, err := s.repo.Get(ctx, keyEmail)
	if err != nil {
		return Session{}, err
	}
	token, err := s.repo.Get(ctx, keyRefreshToken)
	if err != nil {
		return Session{}, err
	}
	return Session{Email: string(email), RefreshToken: string(token)}, nil
}

// Save replaces the stored session atomically.
func (s *Store) Save(ctx context.Context, sess Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyEmail, []byte(sess.Email)); err != nil {
			return err
		}
		return repo.Set(ctx, keyRefreshToken, []byte(sess.RefreshToken))
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
