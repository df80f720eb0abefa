// Package cryptox implements the block-cipher core of the media pipeline:
// AES-128 in CBC mode with PKCS#7 padding and a fresh random IV per
// encryption. The camera firmware uses the same cipher, so these parameters
// are a wire contract and must not change.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/Pradeepp09/SITE-server/internal/common"
)

const (
	// KeySize is the fixed AES-128 key length.
	KeySize = 16
	// BlockSize is the AES block size; IVs are exactly one block.
	BlockSize = aes.BlockSize
)

// NormalizeKey copies arbitrary-length key material into a zero-filled
// 16-byte buffer: bytes beyond 16 are discarded, bytes short of 16 stay zero.
// Changing this would change the effective key of every previously encrypted
// record, so it mirrors the provisioning format exactly.
func NormalizeKey(raw []byte) []byte {
	key := make([]byte, KeySize)
	copy(key, raw)
	return key
}

// Encrypt encrypts plaintext under key with a fresh IV drawn from
// crypto/rand. The IV is returned alongside the ciphertext; it is not secret
// and is persisted next to the record, but it must never repeat for the same
// key (the 128-bit random draw guarantees this statistically).
func Encrypt(key, plaintext []byte) (iv, ciphertext []byte, err error) {
	iv = make([]byte, BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, err
	}

	ciphertext, err = EncryptWithIV(key, iv, plaintext)
	if err != nil {
		return nil, nil, err
	}

	return iv, ciphertext, nil
}

// EncryptWithIV is the deterministic encryption core: same key, IV and
// plaintext always produce the same ciphertext. Callers outside of tests
// should use Encrypt, which generates the IV.
func EncryptWithIV(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != BlockSize {
		return nil, common.Wrap(common.KindValidation, "iv must be one block", nil)
	}

	padded := pad(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return ciphertext, nil
}

// Decrypt is the inverse of Encrypt. It fails with a DECRYPTION_FAILED error
// when the ciphertext length is not a block multiple or the padding is
// invalid after decryption; both indicate a wrong key, a corrupted blob, or
// an IV/ciphertext mismatch. It never returns an empty plaintext as success
// for malformed input.
func Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != BlockSize {
		return nil, common.Wrap(common.KindDecryptionFailed, "iv must be one block", nil)
	}
	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, common.Wrap(common.KindDecryptionFailed, "ciphertext length is not a block multiple", nil)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := unpad(padded)
	if err != nil {
		return nil, err
	}

	return plaintext, nil
}

// pad appends PKCS#7 padding; a full extra block is added when the plaintext
// is already block-aligned.
func pad(data []byte) []byte {
	n := BlockSize - len(data)%BlockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > BlockSize || n > len(data) {
		return nil, common.Wrap(common.KindDecryptionFailed, "invalid padding", nil)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, common.Wrap(common.KindDecryptionFailed, "invalid padding", nil)
		}
	}
	return data[:len(data)-n], nil
}
