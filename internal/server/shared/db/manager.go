// Package db wires the PostgreSQL connection, the repositories, and the
// embedded migrations behind a single manager.
package db

import (
	"context"
	"database/sql"

	"github.com/Pradeepp09/SITE-server/internal/server/repositories/accounts"
	"github.com/Pradeepp09/SITE-server/internal/server/repositories/media"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Accounts() accounts.Repository
	Media() media.Repository
}
