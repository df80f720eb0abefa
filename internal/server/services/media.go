package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/Pradeepp09/SITE-server/internal/common"
	"github.com/Pradeepp09/SITE-server/internal/cryptox"
	"github.com/Pradeepp09/SITE-server/internal/logging"
	"github.com/Pradeepp09/SITE-server/internal/server/models"
	"github.com/Pradeepp09/SITE-server/internal/server/repositories/media"
	"github.com/Pradeepp09/SITE-server/internal/server/storage"
	"github.com/Pradeepp09/SITE-server/internal/shared"
)

// MediaService orchestrates the encrypted media pipeline: encrypt-then-store
// on ingest, fetch-then-decrypt on retrieval, with the ledger keeping every
// ciphertext recoverable.
type MediaService struct {
	accounts *AccountService
	ledger   media.Repository
	store    storage.ObjectStore
	logger   logging.Logger
}

func NewMediaService(accounts *AccountService, ledger media.Repository, store storage.ObjectStore, logger logging.Logger) *MediaService {
	return &MediaService{
		accounts: accounts,
		ledger:   ledger,
		store:    store,
		logger:   logger.With("module", "media_service"),
	}
}

// objectName derives the ciphertext blob name from the capture instant.
// Nanosecond resolution keeps names collision-free within the process
// lifetime.
func objectName(capturedAt time.Time) string {
	return fmt.Sprintf("enc_%d", capturedAt.UnixNano())
}

// plainObjectName swaps the enc_ prefix for dec_.
func plainObjectName(name string) string {
	return "dec_" + strings.TrimPrefix(name, "enc_")
}

// Ingest turns a raw frame into a ciphertext blob and a ledger row, returning
// the ciphertext locator. The store write happens before the ledger write: a
// ledger row must never reference a blob that does not exist. The reverse
// inconsistency (blob stored, ledger write failed) is an accepted orphan,
// logged for out-of-band reconciliation.
func (s *MediaService) Ingest(ctx context.Context, payload []byte, account *models.Account) (string, error) {
	if len(payload) == 0 {
		return "", common.ErrEmptyPayload
	}

	key, err := s.accounts.KeyFor(account)
	if err != nil {
		return "", err
	}
	defer shared.WipeByteArray(key)

	iv, ciphertext, err := cryptox.Encrypt(key, payload)
	if err != nil {
		return "", err
	}

	capturedAt := time.Now()
	name := objectName(capturedAt)

	locator, err := s.store.Put(ctx, "encrypted/"+name, ciphertext)
	if err != nil {
		return "", err
	}

	record := &models.MediaRecord{
		ObjectName:    name,
		IV:            hex.EncodeToString(iv),
		OwnerEmail:    account.Email,
		CipherLocator: locator,
		CapturedAt:    capturedAt,
	}

	if err := s.ledger.Create(ctx, record); err != nil {
		s.logger.Warn(ctx, "orphaned ciphertext blob: stored but not ledgered",
			"object", name, "locator", locator, "error", err.Error())
		return "", err
	}

	s.logger.Info(ctx, "frame ingested", "object", name, "owner", account.Email, "bytes", len(ciphertext))
	return locator, nil
}

// RetrievedItem is one record's outcome in a retrieval batch. Err is nil on
// success; on failure it carries the per-record error kind and PlainLocator
// is empty.
type RetrievedItem struct {
	ObjectName   string
	PlainLocator string
	Err          error
}

// Retrieve decrypts all of an account's frames, most recent first. Records
// fail individually: one bad blob does not abort the batch, and results keep
// the ledger's listed order.
func (s *MediaService) Retrieve(ctx context.Context, email string) ([]RetrievedItem, error) {
	account, err := s.accounts.Lookup(ctx, email)
	if err != nil {
		return nil, err
	}

	key, err := s.accounts.KeyFor(account)
	if err != nil {
		return nil, err
	}
	defer shared.WipeByteArray(key)

	records, err := s.ledger.ListByOwner(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, common.ErrNoMediaFound
	}

	result := make([]RetrievedItem, 0, len(records))
	for _, record := range records {
		item := s.retrieveOne(ctx, key, record)
		if item.Err != nil {
			s.logger.Warn(ctx, "record retrieval failed",
				"object", record.ObjectName, "error", item.Err.Error())
		}
		result = append(result, item)
	}

	return result, nil
}

func (s *MediaService) retrieveOne(ctx context.Context, key []byte, record *models.MediaRecord) RetrievedItem {
	item := RetrievedItem{ObjectName: record.ObjectName}

	ciphertext, err := s.store.Get(ctx, record.CipherLocator)
	if err != nil {
		item.Err = err
		return item
	}

	iv, err := hex.DecodeString(record.IV)
	if err != nil {
		item.Err = common.Wrap(common.KindDecryptionFailed, "malformed iv in ledger", err)
		return item
	}

	plaintext, err := cryptox.Decrypt(key, iv, ciphertext)
	if err != nil {
		item.Err = err
		return item
	}

	plainName := plainObjectName(record.ObjectName)
	locator, err := s.store.Put(ctx, "decrypted/"+plainName, plaintext)
	if err != nil {
		item.Err = err
		return item
	}

	if err := s.ledger.AttachPlainLocator(ctx, record.ObjectName, locator); err != nil {
		item.Err = err
		return item
	}

	item.PlainLocator = locator
	return item
}

// DecryptedItem describes a frame whose plaintext is already stored.
type DecryptedItem struct {
	ObjectName   string
	PlainLocator string
	CapturedAt   time.Time
}

// ListDecrypted reports the account's already-retrieved frames, most recent
// first. NO_MEDIA_FOUND when the account has no records or none are decrypted
// yet.
func (s *MediaService) ListDecrypted(ctx context.Context, email string) ([]DecryptedItem, error) {
	if _, err := s.accounts.Lookup(ctx, email); err != nil {
		return nil, err
	}

	records, err := s.ledger.ListByOwner(ctx, email)
	if err != nil {
		return nil, err
	}

	result := []DecryptedItem{}
	for _, record := range records {
		if record.PlainLocator == "" {
			continue
		}
		result = append(result, DecryptedItem{
			ObjectName:   plainObjectName(record.ObjectName),
			PlainLocator: record.PlainLocator,
			CapturedAt:   record.CapturedAt,
		})
	}
	if len(result) == 0 {
		return nil, common.ErrNoMediaFound
	}

	return result, nil
}
