package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_EmptyByDefault(t *testing.T) {
	s := openMemory(t)

	sess, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Empty())
	assert.Equal(t, "", sess.Email)
}

func TestStore_SaveLoadClear(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Session{Email: "a@b.c", RefreshToken: "r1"}))
	require.NoError(t, s.Save(ctx, Session{Email: "a@b.c", RefreshToken: "r2"}))

	sess, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Session{Email: "a@b.c", RefreshToken: "r2"}, sess)

	require.NoError(t, s.Clear(ctx))
	sess, err = s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, sess.Empty())
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, Session{Email: "x@y.z", RefreshToken: "tok"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	sess, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.RefreshToken)
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "s.db"))
	assert.Error(t, err)
}
