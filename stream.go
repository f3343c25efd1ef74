package miscreant

import (
	"encoding/binary"
	"math"
)

// NoncePrefixSize is the length of the per-stream nonce prefix shared by
// every segment in a STREAM sequence.
const NoncePrefixSize = 8

// streamNonceSize is the length of the internal 13-byte nonce fed to the
// underlying AEAD for each segment: an 8-byte prefix, a 4-byte
// big-endian segment counter, and a 1-byte end-of-stream flag.
const streamNonceSize = NoncePrefixSize + 4 + 1

// segmentNonce writes the 13-byte internal nonce for segment i with
// end-of-stream flag last into nonce, which must be streamNonceSize
// bytes long.
func segmentNonce(nonce []byte, prefix [NoncePrefixSize]byte, i uint32, last bool) {
	copy(nonce, prefix[:])
	binary.BigEndian.PutUint32(nonce[NoncePrefixSize:], i)
	if last {
		nonce[streamNonceSize-1] = 1
	} else {
		nonce[streamNonceSize-1] = 0
	}
}

// Encryptor seals an ordered sequence of segments under a shared key and
// nonce prefix, chaining them so that reordering, truncation, or
// splicing across the sequence is detected by Decryptor. It is not safe
// for concurrent use.
type Encryptor struct {
	aead     *AEAD
	prefix   [NoncePrefixSize]byte
	counter  uint32
	finished bool
}

// NewEncryptor constructs an Encryptor for algorithm, keyed by key, with
// the given nonce prefix. Every Encryptor/Decryptor pair sharing a key
// must use a nonce prefix unique to that pair for the STREAM guarantees
// to hold.
func NewEncryptor(algorithm Algorithm, key []byte, noncePrefix [NoncePrefixSize]byte) (*Encryptor, error) {
	a, err := New(algorithm, key)
	if err != nil {
		return nil, err
	}
	return &Encryptor{aead: a, prefix: noncePrefix}, nil
}

// Seal encrypts and authenticates the next segment, appending the
// result to dst. lastBlock must be true for exactly the final segment
// of the sequence; after such a call, Seal fails with a StateError on
// any subsequent use of this Encryptor.
func (e *Encryptor) Seal(dst, plaintext, additionalData []byte, lastBlock bool) ([]byte, error) {
	if e.finished {
		return nil, &StateError{Operation: "stream seal", Message: "encryptor already finalized with last_block=true"}
	}
	// counter is a uint32: refuse one segment before it would wrap back
	// to 0 and reuse a nonce, rather than checking for the wrap after
	// the fact (e.counter++ below would already have silently overflowed).
	if e.counter >= math.MaxUint32 {
		return nil, &OverflowError{SegmentCount: uint64(e.counter) + 1}
	}

	nonce := make([]byte, streamNonceSize)
	segmentNonce(nonce, e.prefix, e.counter, lastBlock)

	out, err := e.aead.Seal(dst, nonce, plaintext, additionalData)
	if err != nil {
		return nil, err
	}

	e.counter++
	if lastBlock {
		e.finished = true
	}
	return out, nil
}

// Finished reports whether Seal has processed a segment with
// lastBlock = true.
func (e *Encryptor) Finished() bool {
	return e.finished
}

// Close zeroes the MAC-half key material retained by this Encryptor.
func (e *Encryptor) Close() {
	e.aead.Close()
}

// Decryptor opens a sequence of segments produced by a matching
// Encryptor, enforcing the same ordering and end-of-stream discipline.
// It is not safe for concurrent use.
type Decryptor struct {
	aead     *AEAD
	prefix   [NoncePrefixSize]byte
	counter  uint32
	finished bool
}

// NewDecryptor constructs a Decryptor for algorithm, keyed by key, with
// the given nonce prefix, matching the Encryptor it will read from.
func NewDecryptor(algorithm Algorithm, key []byte, noncePrefix [NoncePrefixSize]byte) (*Decryptor, error) {
	a, err := New(algorithm, key)
	if err != nil {
		return nil, err
	}
	return &Decryptor{aead: a, prefix: noncePrefix}, nil
}

// Open authenticates and decrypts the next segment, which must be
// presented in the same order and with the same lastBlock pattern used
// by the Encryptor, appending the recovered plaintext to dst. Any
// deviation in order or in the lastBlock flag produces an
// IntegrityError on that segment, since it changes the nonce the
// underlying AEAD authenticates against.
func (d *Decryptor) Open(dst, ciphertext, additionalData []byte, lastBlock bool) ([]byte, error) {
	if d.finished {
		return nil, &StateError{Operation: "stream open", Message: "decryptor already finalized with last_block=true"}
	}
	if d.counter >= math.MaxUint32 {
		return nil, &OverflowError{SegmentCount: uint64(d.counter) + 1}
	}

	nonce := make([]byte, streamNonceSize)
	segmentNonce(nonce, d.prefix, d.counter, lastBlock)

	out, err := d.aead.Open(dst, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, err
	}

	d.counter++
	if lastBlock {
		d.finished = true
	}
	return out, nil
}

// Finished reports whether Open has processed a segment with
// lastBlock = true.
func (d *Decryptor) Finished() bool {
	return d.finished
}

// Close zeroes the MAC-half key material retained by this Decryptor.
func (d *Decryptor) Close() {
	d.aead.Close()
}
