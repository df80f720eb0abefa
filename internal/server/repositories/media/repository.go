// Package media provides the media ledger: the persistent record that makes
// stored ciphertext recoverable (IV, owner, locators).
package media

import (
	"context"

	"github.com/Pradeepp09/SITE-server/internal/server/models"
)

type Repository interface {
	// Create persists a new record; DUPLICATE_OBJECT when the object name is
	// already ledgered.
	Create(ctx context.Context, record *models.MediaRecord) error
	// ListByOwner returns the owner's records ordered by capture time
	// descending. An owner with no records yields an empty slice, not an error.
	ListByOwner(ctx context.Context, ownerEmail string) ([]*models.MediaRecord, error)
	// AttachPlainLocator idempotently sets the plaintext locator;
	// RECORD_NOT_FOUND when the object name is unknown.
	AttachPlainLocator(ctx context.Context, objectName, locator string) error
}
