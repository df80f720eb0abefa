package accounts

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

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (product_number, name, mobile, email, password_hash, aes_key, agree)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.ProductNumber, account.Name, account.Mobile, account.Email,
		account.PasswordHash, account.AESKey, account.Agree).Scan(&account.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.Wrap(common.KindAlreadyExists, "email or product number already registered", err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT id, product_number, name, mobile, email, password_hash, aes_key, agree FROM accounts
		 WHERE email = $1
		 `

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID, &account.ProductNumber, &account.Name, &account.Mobile,
		&account.Email, &account.PasswordHash, &account.AESKey, &account.Agree)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

// GetAny resolves the oldest provisioned account. No rows maps to
// KEY_NOT_FOUND: the upload path treats "no account at all" and "no key"
// identically.
func (r *PostgresRepository) GetAny(ctx context.Context) (*models.Account, error) {
	query :=
		`SELECT id, product_number, name, mobile, email, password_hash, aes_key, agree FROM accounts
		 ORDER BY id
		 LIMIT 1
		 `

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&account.ID, &account.ProductNumber, &account.Name, &account.Mobile,
		&account.Email, &account.PasswordHash, &account.AESKey, &account.Agree)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrKeyNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}
