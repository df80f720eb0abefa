// Package services holds the application services orchestrating the
// repositories, the cipher engine, and the object store.
package services

import (
	"context"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/Pradeepp09/SITE-server/internal/common"
	"github.com/Pradeepp09/SITE-server/internal/cryptox"
	"github.com/Pradeepp09/SITE-server/internal/logging"
	"github.com/Pradeepp09/SITE-server/internal/server/auth"
	sc "github.com/Pradeepp09/SITE-server/internal/server/config"
	"github.com/Pradeepp09/SITE-server/internal/server/models"
	"github.com/Pradeepp09/SITE-server/internal/server/repositories/accounts"
)

var mobilePattern = regexp.MustCompile(`^\d{10}$`)

// AccountService is the account directory and key provisioner: it owns
// registration, login, and the resolution of an account's 16-byte AES key.
type AccountService struct {
	repo   accounts.Repository
	config *sc.Config
	logger logging.Logger
}

func NewAccountService(repo accounts.Repository, config *sc.Config, logger logging.Logger) *AccountService {
	return &AccountService{
		repo:   repo,
		config: config,
		logger: logger.With("module", "account_service"),
	}
}

// RegisterRequest carries the signup form. The AES key is the device's
// symmetric key material and is stored as given, never hashed.
type RegisterRequest struct {
	ProductNumber   int64
	Name            string
	Mobile          string
	Email           string
	Password        string
	ConfirmPassword string
	AESKey          string
	Agree           bool
}

func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	if req.ProductNumber == 0 || req.Name == "" || req.Mobile == "" || req.Email == "" ||
		req.Password == "" || req.ConfirmPassword == "" || req.AESKey == "" || !req.Agree {
		return nil, common.New(common.KindValidation, "all fields are required")
	}
	if req.Password != req.ConfirmPassword {
		return nil, common.New(common.KindValidation, "passwords do not match")
	}
	if !mobilePattern.MatchString(req.Mobile) {
		return nil, common.New(common.KindValidation, "mobile must be 10 digits")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ProductNumber: req.ProductNumber,
		Name:          req.Name,
		Mobile:        req.Mobile,
		Email:         req.Email,
		PasswordHash:  string(hash),
		AESKey:        req.AESKey,
		Agree:         req.Agree,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account registered", "email", created.Email)
	return created, nil
}

// Login verifies credentials and issues an HS256 token carrying the account
// email. Unknown accounts and wrong passwords are indistinguishable to the
// caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", common.New(common.KindValidation, "email and password are required")
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", common.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrUnauthorized
	}

	return auth.GenerateToken(account.Email, []byte(s.config.SecretKey), s.config.TokenValidityDuration)
}

// Lookup resolves an account by its contact address.
func (s *AccountService) Lookup(ctx context.Context, email string) (*models.Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

// LookupAny resolves an arbitrary provisioned account. The camera upload path
// has no per-device identity of its own and falls back to this; carrying a
// device token on upload avoids the ambiguity.
func (s *AccountService) LookupAny(ctx context.Context) (*models.Account, error) {
	return s.repo.GetAny(ctx)
}

// ResolveDeviceToken maps an upload's device token to its account.
func (s *AccountService) ResolveDeviceToken(ctx context.Context, token string) (*models.Account, error) {
	email, err := auth.GetEmailFromToken(token, []byte(s.config.SecretKey))
	if err != nil {
		return nil, err
	}
	return s.repo.GetByEmail(ctx, email)
}

// KeyFor returns the account's AES-128 key, normalized to exactly 16 bytes
// (truncate/zero-pad). KEY_NOT_FOUND when no key material was provisioned.
// Callers own the returned buffer and should wipe it when done.
func (s *AccountService) KeyFor(account *models.Account) ([]byte, error) {
	if account == nil || account.AESKey == "" {
		return nil, common.ErrKeyNotFound
	}
	return cryptox.NormalizeKey([]byte(account.AESKey)), nil
}
