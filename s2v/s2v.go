// Package s2v implements the S2V pseudo-random function from RFC 5297
// §2.4, the core of the SIV construction: it folds a vector of
// associated-data strings and a plaintext into a single 16-byte
// synthetic IV using repeated doubling and MAC evaluations.
package s2v

import (
	"hash"

	"github.com/miscreant/miscreant-go/internal/block"
)

// S2V drives the MAC h (CMAC or PMAC, keyed by the caller) over ad and
// plaintext per RFC 5297:
//
//	d := MAC(zero block)
//	for each a in ad: d := dbl(d) xor MAC(a)
//	if len(plaintext) >= 16: T := MAC(plaintext with its last 16 bytes
//	    xored with d)
//	else: T := MAC(dbl(d) xor pad(plaintext))
//
// h must produce a 16-byte digest and must be freshly reset (or newly
// constructed); S2V resets it between every internal MAC evaluation, so
// h is left reset on return.
//
// The empty-AD, empty-plaintext S2V edge case from RFC 5297 (returning
// MAC(1) when the vector of strings is entirely empty) never arises in
// SIV usage: plaintext is always passed, even when zero-length, so it is
// not implemented here.
func S2V(h hash.Hash, ad [][]byte, plaintext []byte) []byte {
	if h.Size() != block.Size {
		panic("s2v: mac digest size must be 16 bytes")
	}

	var zero block.Block
	var d block.Block
	copy(d[:], mac(h, zero[:]))

	for _, a := range ad {
		d.Dbl()
		tag := mac(h, a)
		for i := range d {
			d[i] ^= tag[i]
		}
	}

	var t []byte
	if len(plaintext) >= block.Size {
		t = block.XorEnd(plaintext, d)
	} else {
		d.Dbl()
		pad := block.Pad(plaintext)
		for i := range d {
			d[i] ^= pad[i]
		}
		t = d[:]
	}

	return mac(h, t)
}

// mac resets h, writes data through it, and returns the finalized
// digest, leaving h reset for the next call.
func mac(h hash.Hash, data []byte) []byte {
	h.Reset()
	h.Write(data)
	tag := h.Sum(nil)
	h.Reset()
	return tag
}
