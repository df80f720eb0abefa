// Package common defines the shared error taxonomy used across the media
// pipeline. Every error surfaced to a caller carries a stable machine-readable
// Kind plus a human-readable message. Callers should use errors.Is against the
// sentinel values to branch on kind.
package common

import "fmt"

// Kind is a stable machine-readable error category. Kinds are part of the
// external contract: the HTTP layer maps them to status codes and clients
// match on them, so values must never change.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindEmptyPayload       Kind = "EMPTY_PAYLOAD"
	KindAccountNotFound    Kind = "ACCOUNT_NOT_FOUND"
	KindKeyNotFound        Kind = "KEY_NOT_FOUND"
	KindRecordNotFound     Kind = "RECORD_NOT_FOUND"
	KindNoMediaFound       Kind = "NO_MEDIA_FOUND"
	KindAlreadyExists      Kind = "ALREADY_EXISTS"
	KindDuplicateObject    Kind = "DUPLICATE_OBJECT"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindDecryptionFailed   Kind = "DECRYPTION_FAILED"
	KindStorageUnavailable Kind = "STORAGE_UNAVAILABLE"
	KindFetchFailed        Kind = "FETCH_FAILED"
	KindInternal           Kind = "INTERNAL"
)

// AppError is the error type crossing component boundaries. Cause is kept for
// logs and unwrapping but is never serialized across the API boundary.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches two AppErrors by Kind, so errors.Is(err, ErrDecryptionFailed)
// holds for any wrapped DECRYPTION_FAILED error regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, message string) error {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) error {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

// Sentinel values for errors.Is matching.
var (
	ErrEmptyPayload       = &AppError{Kind: KindEmptyPayload, Message: "empty payload"}
	ErrAccountNotFound    = &AppError{Kind: KindAccountNotFound, Message: "account not found"}
	ErrKeyNotFound        = &AppError{Kind: KindKeyNotFound, Message: "no key provisioned"}
	ErrRecordNotFound     = &AppError{Kind: KindRecordNotFound, Message: "media record not found"}
	ErrNoMediaFound       = &AppError{Kind: KindNoMediaFound, Message: "no media found"}
	ErrDuplicateObject    = &AppError{Kind: KindDuplicateObject, Message: "object already exists"}
	ErrAlreadyExists      = &AppError{Kind: KindAlreadyExists, Message: "already registered"}
	ErrUnauthorized       = &AppError{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrDecryptionFailed   = &AppError{Kind: KindDecryptionFailed, Message: "decryption failed"}
	ErrStorageUnavailable = &AppError{Kind: KindStorageUnavailable, Message: "object storage unavailable"}
	ErrFetchFailed        = &AppError{Kind: KindFetchFailed, Message: "blob fetch failed"}
)

// KindOf extracts the Kind from any error produced by this package, walking
// the wrap chain. Unknown errors report KindInternal.
func KindOf(err error) Kind {
	for err != nil {
		if ae, ok := err.(*AppError); ok {
			return ae.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return KindInternal
}
