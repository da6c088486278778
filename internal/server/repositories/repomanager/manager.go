// Package repomanager vends repository implementations bound to a
// connection or transaction, and owns schema migrations.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/users"
)

// MemoryDSN selects the in-process store instead of PostgreSQL.
const MemoryDSN = "memory"

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// Conn is the pool used for statements outside a transaction.
	Conn() dbx.DBTX
	Ping(ctx context.Context) error
	Users(db dbx.DBTX) users.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	// WithTx runs fn in one transaction; repositories created from tx
	// take part in it.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Close() error
}

// Open returns the in-memory manager for MemoryDSN and a PostgreSQL manager
// for anything else.
func Open(dsn string) (RepositoryManager, error) {
	if dsn == MemoryDSN {
		return NewInMemoryRepositoryManager(), nil
	}
	m, err := OpenPostgres(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return m, nil
}
