// Package miscreant implements AES-SIV (RFC 5297) and AES-PMAC-SIV, a
// pair of misuse-resistant authenticated encryption algorithms, plus the
// STREAM online construction for chaining them into an ordered,
// tamper-evident sequence of segments.
//
// # Overview
//
// Unlike GCM or ChaCha20-Poly1305, SIV derives its synthetic IV from the
// plaintext and associated data themselves, so nonce reuse degrades
// security only to the level of revealing whether two messages (with
// identical associated data) are equal, rather than catastrophically
// breaking confidentiality and authenticity the way it does under
// counter-mode constructions.
//
// # Algorithms
//
//   - AES-SIV (alias AES-CMAC-SIV): the original RFC 5297 construction,
//     driven by CMAC.
//   - AES-PMAC-SIV: drives the same S2V core with PMAC instead, whose
//     per-block cipher calls are independent of one another and so
//     parallelizable; this package computes them sequentially.
//
// Both accept 32-byte (AES-128-backed) or 64-byte (AES-256-backed) keys,
// split evenly into a MAC half and an AES-CTR half.
//
// # Basic usage
//
//	key, err := miscreant.GenerateKey(64)
//	if err != nil {
//	    panic(err)
//	}
//
//	a, err := miscreant.New(miscreant.AlgorithmAESPMACSIV, key)
//	if err != nil {
//	    panic(err)
//	}
//
//	nonce, _ := miscreant.GenerateNonce(16)
//	ciphertext, err := a.Seal(nil, nonce, []byte("plaintext"), []byte("associated data"))
//	if err != nil {
//	    panic(err)
//	}
//
//	plaintext, err := a.Open(nil, nonce, ciphertext, []byte("associated data"))
//
// # STREAM
//
// For data too large to hold in memory as one message, or that arrives
// incrementally, an Encryptor/Decryptor pair chains per-segment AEAD
// calls under a shared nonce prefix, each segment tagged with its
// position and an end-of-stream flag so that truncation, reordering, and
// splicing are all detected. See Encryptor and Decryptor.
//
// # Security considerations
//
// Protected against:
//   - Nonce reuse (degrades to equality leakage, not full break)
//   - Tampering and truncation of ciphertext or associated data
//   - Segment reordering and splicing within a STREAM sequence
//
// Not protected against:
//   - Key compromise
//   - Side-channel attacks against the underlying AES implementation
//   - Traffic analysis (message lengths and counts are not hidden)
//
// # Key derivation
//
// Keys may be generated directly with GenerateKey, or derived from a
// password with PasswordKeyProvider (Argon2id, recommended, or PBKDF2
// for interoperability with systems that mandate it).
package miscreant
