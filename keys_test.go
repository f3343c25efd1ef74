package miscreant

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateKeySizes(t *testing.T) {
	for _, size := range []int{32, 64} {
		key, err := GenerateKey(size)
		if err != nil {
			t.Fatalf("GenerateKey(%d): %v", size, err)
		}
		if len(key) != size {
			t.Errorf("GenerateKey(%d) returned %d bytes", size, len(key))
		}
	}
}

func TestGenerateKeyRejectsBadSizeWithSentinel(t *testing.T) {
	if _, err := GenerateKey(48); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("GenerateKey(48) = %v, want wrapped ErrInvalidKeySize", err)
	}
}

func TestPasswordKeyProviderArgon2idDeterministic(t *testing.T) {
	p := NewPasswordKeyProvider([]byte("correct horse battery staple"), Argon2idParams{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
	})

	salt, err := p.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}

	k1, err := p.DeriveKey(salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	k2, err := p.DeriveKey(salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("DeriveKey is not deterministic for a fixed salt")
	}
	if len(k1) != 64 {
		t.Errorf("derived key length = %d, want 64", len(k1))
	}
}

func TestPasswordKeyProviderDifferentSaltsDiffer(t *testing.T) {
	p := NewPasswordKeyProvider([]byte("hunter2"), Argon2idParams{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
	})

	salt1, _ := p.GenerateSalt()
	salt2, _ := p.GenerateSalt()

	k1, err := p.DeriveKey(salt1)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	k2, err := p.DeriveKey(salt2)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if bytes.Equal(k1, k2) {
		t.Error("different salts produced identical keys")
	}
}

func TestPasswordKeyProviderPBKDF2(t *testing.T) {
	p := NewPasswordKeyProviderPBKDF2([]byte("password"), PBKDF2Params{
		Iterations: 1000,
		HashFunc:   SHA256,
		KeySize:    32,
	})

	salt, err := p.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}
	key, err := p.DeriveKey(salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if len(key) != 32 {
		t.Errorf("derived key length = %d, want 32", len(key))
	}
}

func TestPasswordKeyProviderRejectsEmptyPassword(t *testing.T) {
	p := NewPasswordKeyProvider(nil, Argon2idParams{})
	salt, _ := p.GenerateSalt()
	if _, err := p.DeriveKey(salt); !IsArgumentError(err) {
		t.Errorf("DeriveKey with empty password = %v, want ArgumentError", err)
	}
}

func TestRandomKeyProviderIgnoresSaltAndVaries(t *testing.T) {
	p := &RandomKeyProvider{KeySize: 32}
	k1, err := p.DeriveKey([]byte("salt-a"))
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	k2, err := p.DeriveKey([]byte("salt-b"))
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if bytes.Equal(k1, k2) {
		t.Error("RandomKeyProvider produced identical keys across calls")
	}
}

type fixedKeyProvider struct {
	key []byte
	err error
}

func (f *fixedKeyProvider) DeriveKey(salt []byte) ([]byte, error) { return f.key, f.err }
func (f *fixedKeyProvider) GenerateSalt() ([]byte, error)         { return []byte("salt"), nil }

func TestMultiKeyProviderFallsBackOnFailure(t *testing.T) {
	retired := &fixedKeyProvider{err: ErrInvalidKeySize}
	current := &fixedKeyProvider{key: []byte("current-key")}

	m, err := NewMultiKeyProvider(current, retired)
	if err != nil {
		t.Fatalf("NewMultiKeyProvider: %v", err)
	}

	key, err := m.DeriveKey(nil)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if !bytes.Equal(key, current.key) {
		t.Errorf("DeriveKey used non-primary provider: got %q", key)
	}

	m2, err := NewMultiKeyProvider(retired, current)
	if err != nil {
		t.Fatalf("NewMultiKeyProvider: %v", err)
	}
	key2, err := m2.TryDeriveKey(nil)
	if err != nil {
		t.Fatalf("TryDeriveKey: %v", err)
	}
	if !bytes.Equal(key2, current.key) {
		t.Errorf("TryDeriveKey did not fall back to working provider: got %q", key2)
	}
}

func TestMultiKeyProviderRequiresAtLeastOneProvider(t *testing.T) {
	if _, err := NewMultiKeyProvider(); !IsArgumentError(err) {
		t.Errorf("NewMultiKeyProvider() = %v, want ArgumentError", err)
	}
}

func TestMultiKeyProviderRejectsNilProvider(t *testing.T) {
	current := &fixedKeyProvider{key: []byte("current-key")}

	if _, err := NewMultiKeyProvider(current, nil); !errors.Is(err, ErrNilKeyProvider) {
		t.Errorf("NewMultiKeyProvider(..., nil) = %v, want wrapped ErrNilKeyProvider", err)
	}
}

func TestMultiKeyProviderAllFail(t *testing.T) {
	a := &fixedKeyProvider{err: ErrInvalidKeySize}
	b := &fixedKeyProvider{err: ErrInvalidKeySize}

	m, err := NewMultiKeyProvider(a, b)
	if err != nil {
		t.Fatalf("NewMultiKeyProvider: %v", err)
	}
	if _, err := m.TryDeriveKey(nil); err == nil {
		t.Error("TryDeriveKey succeeded despite all providers failing")
	}
}
