// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is a registered camera owner. The AES key material is stored as
// given at registration (not hashed): it is the symmetric key every frame of
// this account is encrypted under, and it is immutable once issued.
type Account struct {
	ID            int64
	ProductNumber int64
	Name          string
	Mobile        string
	Email         string
	PasswordHash  string
	AESKey        string
	Agree         bool
	CreatedAt     time.Time
}
