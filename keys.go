package miscreant

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// GenerateKey returns a fresh random key of the given size (32 bytes
// for AES-128-backed SIV, 64 for AES-256-backed SIV) drawn from
// crypto/rand.
func GenerateKey(size int) ([]byte, error) {
	if size != 32 && size != 64 {
		return nil, &ArgumentError{Field: "size", Value: size, Message: "key size must be 32 or 64 bytes", Err: ErrInvalidKeySize}
	}
	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("miscreant: generating key: %w", err)
	}
	return key, nil
}

// GenerateNonce returns a fresh random nonce of the given size
// (typically DefaultNonceSize, 16 bytes) drawn from crypto/rand.
func GenerateNonce(size int) ([]byte, error) {
	if size <= 0 {
		return nil, NewArgumentError("size", size, "nonce size must be positive")
	}
	nonce := make([]byte, size)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("miscreant: generating nonce: %w", err)
	}
	return nonce, nil
}

// KeyProvider derives SIV keys from caller-supplied salts, so long-lived
// secrets (a password, a master key) never have to be handled directly
// by application code.
type KeyProvider interface {
	// DeriveKey derives a key of the provider's configured size from salt.
	DeriveKey(salt []byte) ([]byte, error)

	// GenerateSalt returns a fresh random salt sized for this provider.
	GenerateSalt() ([]byte, error)
}

// HashFunc selects the underlying hash used by PBKDF2.
type HashFunc uint8

const (
	// SHA256 selects crypto/sha256.
	SHA256 HashFunc = iota
	// SHA512 selects crypto/sha512.
	SHA512
)

func (hf HashFunc) newHash() (func() hash.Hash, error) {
	switch hf {
	case SHA256:
		return sha256.New, nil
	case SHA512:
		return sha512.New, nil
	default:
		return nil, NewArgumentError("HashFunc", hf, "unsupported hash function")
	}
}

// PBKDF2Params configures NewPasswordKeyProviderPBKDF2.
type PBKDF2Params struct {
	Iterations int      // number of iterations (100,000 minimum recommended)
	HashFunc   HashFunc
	SaltSize   int // salt size in bytes (default 32)
	KeySize    int // derived key size in bytes, 32 or 64 (default 64)
}

// Argon2idParams configures NewPasswordKeyProvider.
type Argon2idParams struct {
	Memory      uint32 // memory in KiB, e.g. 64*1024 for 64 MB
	Iterations  uint32 // time parameter
	Parallelism uint8
	SaltSize    int // salt size in bytes (default 32)
	KeySize     int // derived key size in bytes, 32 or 64 (default 64)
}

// PasswordKeyProvider derives SIV keys from a password via Argon2id or
// PBKDF2, matching the KDF choice the caller picked at construction.
type PasswordKeyProvider struct {
	password     []byte
	useArgon2id  bool
	pbkdf2Params PBKDF2Params
	argon2Params Argon2idParams
}

// NewPasswordKeyProviderPBKDF2 builds a password-based key provider
// using PBKDF2. Prefer NewPasswordKeyProvider (Argon2id) for new code;
// PBKDF2 exists for interoperability with systems that already mandate it.
func NewPasswordKeyProviderPBKDF2(password []byte, params PBKDF2Params) *PasswordKeyProvider {
	if params.Iterations == 0 {
		params.Iterations = 100000
	}
	if params.SaltSize == 0 {
		params.SaltSize = 32
	}
	if params.KeySize == 0 {
		params.KeySize = 64
	}

	return &PasswordKeyProvider{
		password:     password,
		useArgon2id:  false,
		pbkdf2Params: params,
	}
}

// NewPasswordKeyProvider builds a password-based key provider using
// Argon2id, the recommended KDF for new deployments.
func NewPasswordKeyProvider(password []byte, params Argon2idParams) *PasswordKeyProvider {
	if params.Memory == 0 {
		params.Memory = 64 * 1024
	}
	if params.Iterations == 0 {
		params.Iterations = 3
	}
	if params.Parallelism == 0 {
		params.Parallelism = 4
	}
	if params.SaltSize == 0 {
		params.SaltSize = 32
	}
	if params.KeySize == 0 {
		params.KeySize = 64
	}

	return &PasswordKeyProvider{
		password:     password,
		useArgon2id:  true,
		argon2Params: params,
	}
}

// DeriveKey derives an SIV key from the provider's password and salt.
func (p *PasswordKeyProvider) DeriveKey(salt []byte) ([]byte, error) {
	if len(p.password) == 0 {
		return nil, NewArgumentError("password", nil, "password cannot be empty")
	}
	if len(salt) == 0 {
		return nil, NewArgumentError("salt", nil, "salt cannot be empty")
	}

	if p.useArgon2id {
		return argon2.IDKey(
			p.password,
			salt,
			p.argon2Params.Iterations,
			p.argon2Params.Memory,
			p.argon2Params.Parallelism,
			uint32(p.argon2Params.KeySize),
		), nil
	}

	newHash, err := p.pbkdf2Params.HashFunc.newHash()
	if err != nil {
		return nil, err
	}

	return pbkdf2.Key(
		p.password,
		salt,
		p.pbkdf2Params.Iterations,
		p.pbkdf2Params.KeySize,
		newHash,
	), nil
}

// GenerateSalt returns a fresh random salt sized per the provider's KDF
// configuration.
func (p *PasswordKeyProvider) GenerateSalt() ([]byte, error) {
	saltSize := p.pbkdf2Params.SaltSize
	if p.useArgon2id {
		saltSize = p.argon2Params.SaltSize
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("miscreant: generating salt: %w", err)
	}
	return salt, nil
}

// RandomKeyProvider ignores the salt entirely and returns keys drawn
// fresh from crypto/rand on every call. Use it when key material is
// generated once and stored by the caller rather than re-derived.
type RandomKeyProvider struct {
	KeySize int // 32 or 64, default 64
}

// DeriveKey returns a fresh random key; salt is accepted for interface
// compatibility but not consulted.
func (r *RandomKeyProvider) DeriveKey(salt []byte) ([]byte, error) {
	size := r.KeySize
	if size == 0 {
		size = 64
	}
	return GenerateKey(size)
}

// GenerateSalt returns a 32-byte random salt, unused by DeriveKey but
// provided so RandomKeyProvider satisfies KeyProvider uniformly.
func (r *RandomKeyProvider) GenerateSalt() ([]byte, error) {
	return GenerateNonce(32)
}

// MultiKeyProvider tries each of several key providers in turn,
// supporting key rotation: decryption falls back across generations of
// key while encryption always uses the primary (first) provider.
type MultiKeyProvider struct {
	providers []KeyProvider
}

// NewMultiKeyProvider builds a MultiKeyProvider. providers[0] is the
// primary, used for DeriveKey; the full list is tried in order by
// TryDeriveKey.
func NewMultiKeyProvider(providers ...KeyProvider) (*MultiKeyProvider, error) {
	if len(providers) == 0 {
		return nil, NewArgumentError("providers", nil, "at least one key provider required")
	}
	for i, p := range providers {
		if p == nil {
			return nil, &ArgumentError{Field: "providers", Value: i, Message: "key provider cannot be nil", Err: ErrNilKeyProvider}
		}
	}
	return &MultiKeyProvider{providers: providers}, nil
}

// DeriveKey uses the primary provider.
func (m *MultiKeyProvider) DeriveKey(salt []byte) ([]byte, error) {
	return m.providers[0].DeriveKey(salt)
}

// GenerateSalt uses the primary provider.
func (m *MultiKeyProvider) GenerateSalt() ([]byte, error) {
	return m.providers[0].GenerateSalt()
}

// TryDeriveKey attempts DeriveKey against each provider in order,
// returning the first success. Useful during key rotation, when old
// ciphertext may have been sealed under a retired provider.
func (m *MultiKeyProvider) TryDeriveKey(salt []byte) ([]byte, error) {
	var lastErr error
	for _, provider := range m.providers {
		key, err := provider.DeriveKey(salt)
		if err != nil {
			lastErr = err
			continue
		}
		return key, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("miscreant: all key providers failed: %w", lastErr)
	}
	return nil, ErrNoKeysAvailable
}
