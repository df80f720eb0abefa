// Package accounts provides the account directory: registration records and
// the lookups the pipelines resolve key material through.
package accounts

import (
	"context"

	"github.com/Pradeepp09/SITE-server/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// GetAny returns an arbitrary provisioned account. The device upload path
	// carries no identity of its own and falls back to this.
	GetAny(ctx context.Context) (*models.Account, error)
}
