package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Pradeepp09/SITE-server/internal/common"
	"github.com/Pradeepp09/SITE-server/internal/dbx"
	"github.com/Pradeepp09/SITE-server/internal/server/models"
)

const uniqueViolation = "23505"

// PostgresRepository implements the media ledger over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new ledger row. Duplicate object names surface as
// DUPLICATE_OBJECT; the primary key makes the check atomic.
func (r *PostgresRepository) Create(ctx context.Context, record *models.MediaRecord) error {
	query := `
		INSERT INTO media (object_name, iv, owner_email, cipher_locator, captured_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ObjectName, record.IV, record.OwnerEmail, record.CipherLocator, record.CapturedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.Wrap(common.KindDuplicateObject, fmt.Sprintf("object %s already ledgered", record.ObjectName), err)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// ListByOwner returns the owner's records, most recent first. The ordering is
// load-bearing: retrieval reports results in this order.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]*models.MediaRecord, error) {
	query := `
		SELECT object_name, iv, owner_email, cipher_locator, plain_locator, captured_at FROM media
		WHERE owner_email = $1
		ORDER BY captured_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to select media records: %w", err)
	}
	defer rows.Close()

	result := []*models.MediaRecord{}
	for rows.Next() {
		var item models.MediaRecord
		var plainLocator sql.NullString
		if err := rows.Scan(
			&item.ObjectName, &item.IV, &item.OwnerEmail, &item.CipherLocator,
			&plainLocator, &item.CapturedAt,
		); err != nil {
			return nil, err
		}
		item.PlainLocator = plainLocator.String
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AttachPlainLocator sets the plaintext locator for an existing record.
// Re-attaching the same or a newer locator is allowed (the write is
// idempotent per object name); an unknown object name is RECORD_NOT_FOUND.
func (r *PostgresRepository) AttachPlainLocator(ctx context.Context, objectName, locator string) error {
	query := `
		UPDATE media SET plain_locator = $2
		WHERE object_name = $1
	`
	res, err := r.db.ExecContext(ctx, query, objectName, locator)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrRecordNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
