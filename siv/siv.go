// Package siv implements AES-SIV (RFC 5297) and AES-PMAC-SIV, the
// misuse-resistant deterministic authenticated encryption construction
// built from S2V and AES-CTR.
package siv

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"errors"
	"fmt"
	"hash"

	cmac "github.com/chmike/cmac-go"
	"github.com/miscreant/miscreant-go/pmac"
	"github.com/miscreant/miscreant-go/s2v"
)

// MACChoice selects which MAC flavor S2V is driven by.
type MACChoice int

const (
	// CMAC selects the original RFC 5297 construction (AES-SIV).
	CMAC MACChoice = iota
	// PMAC selects the parallelizable variant (AES-PMAC-SIV).
	PMAC
)

func (c MACChoice) String() string {
	switch c {
	case CMAC:
		return "CMAC"
	case PMAC:
		return "PMAC"
	default:
		return "unknown"
	}
}

// ErrAuth is returned by Open when the computed synthetic IV does not
// match the one embedded in the ciphertext.
var ErrAuth = authError{}

type authError struct{}

func (authError) Error() string { return "siv: authentication failed" }

// ErrInvalidKeySize is returned (wrapped with the offending length) by
// New when key is not 32 or 64 bytes.
var ErrInvalidKeySize = errors.New("siv: key must be 32 or 64 bytes")

// ErrCiphertextTooShort is returned (wrapped with the offending length)
// by Open when ciphertext is too small to contain a synthetic IV.
var ErrCiphertextTooShort = errors.New("siv: ciphertext too short to contain a synthetic IV")

// SIV is an AES-SIV (or AES-PMAC-SIV) instance keyed by a single byte
// string split into a MAC half and an AES-CTR half. It is immutable
// after construction and safe for concurrent Seal/Open calls made with
// distinct hash.Hash state (each call builds its own MAC instance).
type SIV struct {
	macKey []byte
	ctrKey cipher.Block
	choice MACChoice
}

// New constructs an SIV instance. key must be 32 or 64 bytes; it is
// split by exact half, the first half keying the MAC and the second
// keying AES-CTR.
func New(key []byte, choice MACChoice) (*SIV, error) {
	if len(key) != 32 && len(key) != 64 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKeySize, len(key))
	}
	half := len(key) / 2
	macKey, encKey := key[:half], key[half:]

	ctrKey, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("siv: %w", err)
	}

	return &SIV{
		macKey: append([]byte(nil), macKey...),
		ctrKey: ctrKey,
		choice: choice,
	}, nil
}

// newMAC builds a fresh hash.Hash for the MAC half of the key, per the
// chosen flavor. A fresh instance is built for every Seal/Open call so
// SIV instances are safe to share across goroutines despite MAC state
// being mutable.
func (s *SIV) newMAC() (hash.Hash, error) {
	switch s.choice {
	case CMAC:
		return cmac.New(aes.NewCipher, s.macKey)
	case PMAC:
		macCipher, err := aes.NewCipher(s.macKey)
		if err != nil {
			return nil, fmt.Errorf("siv: %w", err)
		}
		return pmac.New(macCipher), nil
	default:
		return nil, fmt.Errorf("siv: unknown mac choice %v", s.choice)
	}
}

// Seal encrypts plaintext and authenticates it together with ad,
// returning V‖C, V being the 16-byte synthetic IV.
func (s *SIV) Seal(plaintext []byte, ad ...[]byte) ([]byte, error) {
	h, err := s.newMAC()
	if err != nil {
		return nil, err
	}

	v := s2v.S2V(h, ad, plaintext)

	out := make([]byte, len(v)+len(plaintext))
	copy(out, v)
	s.transform(v, plaintext, out[len(v):])

	return out, nil
}

// Open verifies and decrypts ciphertext (V‖C), authenticating it
// together with ad. It returns ErrAuth if the embedded synthetic IV does
// not match the one recomputed from the decrypted plaintext.
func (s *SIV) Open(ciphertext []byte, ad ...[]byte) ([]byte, error) {
	const ivSize = 16
	if len(ciphertext) < ivSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrCiphertextTooShort, len(ciphertext))
	}

	v, c := ciphertext[:ivSize], ciphertext[ivSize:]

	plaintext := make([]byte, len(c))
	s.transform(v, c, plaintext)

	h, err := s.newMAC()
	if err != nil {
		return nil, err
	}
	t := s2v.S2V(h, ad, plaintext)

	if subtle.ConstantTimeCompare(t, v) != 1 {
		return nil, ErrAuth
	}

	return plaintext, nil
}

// Zero overwrites the retained MAC-half key material with zeroes. The
// AES-CTR half lives inside the opaque cipher.Block returned by
// crypto/aes and cannot be zeroed from here; callers that need the
// encryption key gone from memory must not retain the original key
// slice passed to New either.
func (s *SIV) Zero() {
	for i := range s.macKey {
		s.macKey[i] = 0
	}
}

// transform runs AES-CTR keyed by the encryption half, with iv being the
// synthetic IV with the top bit of each of its last two 32-bit words
// cleared (bytes 8 and 12 masked with 0x7f) per RFC 5297 §2.5. This masking must never be
// applied when recomputing the tag for comparison in Open, only here.
func (s *SIV) transform(iv, src, dst []byte) {
	ctrIV := make([]byte, len(iv))
	copy(ctrIV, iv)
	ctrIV[8] &= 0x7f
	ctrIV[12] &= 0x7f

	stream := cipher.NewCTR(s.ctrKey, ctrIV)
	stream.XORKeyStream(dst, src)
}
