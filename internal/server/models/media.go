package models

import "time"

// MediaRecord is the ledger row for one captured frame. It is created once by
// ingestion and mutated once by retrieval (PlainLocator); without it the
// ciphertext blob is unrecoverable.
type MediaRecord struct {
	// ObjectName uniquely identifies the ciphertext blob, derived from the
	// capture instant (enc_<unix-nanos>).
	ObjectName string
	// IV is the per-record initialization vector, 16 random bytes serialized
	// as lowercase hex. Generated once, immutable, never reused per key.
	IV string
	// OwnerEmail references the owning account by contact address.
	OwnerEmail string
	// CipherLocator is the durable URL of the encrypted blob.
	CipherLocator string
	// PlainLocator is the durable URL of the decrypted blob; empty until a
	// retrieval succeeds for this record.
	PlainLocator string
	// CapturedAt orders records most-recent-first in listings.
	CapturedAt time.Time
}
