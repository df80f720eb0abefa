package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Pradeepp09/SITE-server/internal/common"
	"github.com/Pradeepp09/SITE-server/internal/server/auth"
	sc "github.com/Pradeepp09/SITE-server/internal/server/config"
	"github.com/Pradeepp09/SITE-server/internal/server/models"
	"github.com/Pradeepp09/SITE-server/internal/server/repositories/accounts"
)

func newTestAccountService(repo accounts.Repository) *AccountService {
	cfg := &sc.Config{
		SecretKey:             "test-secret",
		TokenValidityDuration: time.Hour,
	}
	return NewAccountService(repo, cfg, testLogger())
}

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		ProductNumber:   100,
		Name:            "Alice",
		Mobile:          "9876543210",
		Email:           "alice@example.com",
		Password:        "pass123",
		ConfirmPassword: "pass123",
		AESKey:          "0123456789abcdef",
		Agree:           true,
	}
}

func TestRegister_Success(t *testing.T) {
	repo := &fakeAccountsRepo{byEmail: map[string]*models.Account{}}
	svc := newTestAccountService(repo)

	account, err := svc.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if account.AESKey != "0123456789abcdef" {
		t.Error("AES key must be stored as given, never hashed")
	}
	if account.PasswordHash == "pass123" {
		t.Error("password must not be stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("pass123")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	repo := &fakeAccountsRepo{byEmail: map[string]*models.Account{}}
	svc := newTestAccountService(repo)

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"missing email", func(r *RegisterRequest) { r.Email = "" }},
		{"missing key", func(r *RegisterRequest) { r.AESKey = "" }},
		{"not agreed", func(r *RegisterRequest) { r.Agree = false }},
		{"password mismatch", func(r *RegisterRequest) { r.ConfirmPassword = "other" }},
		{"short mobile", func(r *RegisterRequest) { r.Mobile = "12345" }},
		{"non-digit mobile", func(r *RegisterRequest) { r.Mobile = "987654321x" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegisterRequest()
			tt.mutate(&req)
			_, err := svc.Register(context.Background(), req)
			if common.KindOf(err) != common.KindValidation {
				t.Errorf("want VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestLoginAndResolveDeviceToken(t *testing.T) {
	repo := &fakeAccountsRepo{byEmail: map[string]*models.Account{}}
	svc := newTestAccountService(repo)

	if _, err := svc.Register(context.Background(), validRegisterRequest()); err != nil {
		t.Fatal(err)
	}

	token, err := svc.Login(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	account, err := svc.ResolveDeviceToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveDeviceToken error: %v", err)
	}
	if account.Email != "alice@example.com" {
		t.Errorf("resolved %q, want alice@example.com", account.Email)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := &fakeAccountsRepo{byEmail: map[string]*models.Account{}}
	svc := newTestAccountService(repo)

	if _, err := svc.Register(context.Background(), validRegisterRequest()); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Login(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("want UNAUTHORIZED, got %v", err)
	}
}

func TestLogin_UnknownAccountIsIndistinguishable(t *testing.T) {
	repo := &fakeAccountsRepo{byEmail: map[string]*models.Account{}}
	svc := newTestAccountService(repo)

	_, err := svc.Login(context.Background(), "ghost@example.com", "pass123")
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("want UNAUTHORIZED, got %v", err)
	}
}

func TestResolveDeviceToken_ForgedToken(t *testing.T) {
	repo := &fakeAccountsRepo{byEmail: map[string]*models.Account{}}
	svc := newTestAccountService(repo)

	forged, err := auth.GenerateToken("alice@example.com", []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.ResolveDeviceToken(context.Background(), forged)
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("want UNAUTHORIZED, got %v", err)
	}
}

func TestKeyFor(t *testing.T) {
	repo := &fakeAccountsRepo{byEmail: map[string]*models.Account{}}
	svc := newTestAccountService(repo)

	tests := []struct {
		name    string
		aesKey  string
		want    []byte
		wantErr bool
	}{
		{"exact", "0123456789abcdef", []byte("0123456789abcdef"), false},
		{"short is zero padded", "abc", append([]byte("abc"), make([]byte, 13)...), false},
		{"long is truncated", "0123456789abcdefXYZ", []byte("0123456789abcdef"), false},
		{"missing key", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := svc.KeyFor(&models.Account{AESKey: tt.aesKey})
			if tt.wantErr {
				if !errors.Is(err, common.ErrKeyNotFound) {
					t.Fatalf("want KEY_NOT_FOUND, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(key, tt.want) {
				t.Errorf("key = %x, want %x", key, tt.want)
			}
		})
	}

	if _, err := svc.KeyFor(nil); !errors.Is(err, common.ErrKeyNotFound) {
		t.Errorf("nil account: want KEY_NOT_FOUND, got %v", err)
	}
}
