package miscreant

import (
	"errors"

	"github.com/miscreant/miscreant-go/siv"
)

// DefaultNonceSize is the usual nonce length to request from
// GenerateNonce for AEAD use. STREAM nonce prefixes are NoncePrefixSize
// bytes instead.
const DefaultNonceSize = 16

// AEAD is a nonce-misuse-resistant authenticated encryption instance.
// It wraps an siv.SIV, presenting the nonce as a second associated-data
// element alongside the caller's own associated data rather than as a
// true per-message IV: even if a nonce is reused, confidentiality
// degrades only to revealing whether two messages with identical
// associated data are equal.
//
// AEAD is immutable after construction and may be shared across
// goroutines.
type AEAD struct {
	s *siv.SIV
}

// New constructs an AEAD instance for algorithm, keyed by key. algorithm
// must be one of AlgorithmAESSIV, AlgorithmAESCMACSIV, or
// AlgorithmAESPMACSIV; key must be 32 or 64 bytes.
func New(algorithm Algorithm, key []byte) (*AEAD, error) {
	choice, err := macChoice(algorithm)
	if err != nil {
		return nil, err
	}

	s, err := siv.New(key, choice)
	if err != nil {
		if errors.Is(err, siv.ErrInvalidKeySize) {
			return nil, &ArgumentError{Field: "key", Value: len(key), Message: err.Error(), Err: ErrInvalidKeySize}
		}
		return nil, &ArgumentError{Field: "key", Message: err.Error(), Err: err}
	}

	return &AEAD{s: s}, nil
}

// Seal encrypts and authenticates plaintext together with nonce and
// additionalData, appending the result to dst and returning the
// extended slice. The nonce may be of any length and need not be
// secret, but reusing one with the same additionalData for two distinct
// plaintexts reveals that the plaintexts are equal.
func (a *AEAD) Seal(dst, nonce, plaintext, additionalData []byte) ([]byte, error) {
	ct, err := a.s.Seal(plaintext, additionalData, nonce)
	if err != nil {
		return nil, err
	}
	return append(dst, ct...), nil
}

// Open authenticates and decrypts ciphertext, which must have been
// produced by Seal with the same nonce and additionalData, appending
// the recovered plaintext to dst. It returns an IntegrityError if
// authentication fails.
func (a *AEAD) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	pt, err := a.s.Open(ciphertext, additionalData, nonce)
	if err != nil {
		if errors.Is(err, siv.ErrCiphertextTooShort) {
			return nil, &ArgumentError{Field: "ciphertext", Value: len(ciphertext), Message: err.Error(), Err: ErrCiphertextTooSmall}
		}
		if err == siv.ErrAuth {
			return nil, NewIntegrityError("aead open", err)
		}
		return nil, err
	}
	return append(dst, pt...), nil
}

// Close zeroes the MAC-half key material retained by this instance.
// Callers holding the long-term interest in wiping the key from memory
// must also stop retaining the key slice they originally passed to New.
func (a *AEAD) Close() {
	a.s.Zero()
}
