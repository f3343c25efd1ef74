// Package block implements the 128-bit block algebra shared by PMAC, S2V
// and SIV: a fixed 16-byte value with GF(2^128) doubling and in-place
// AES-ECB encryption.
package block

import "crypto/cipher"

// Size is the width of an AES block in bytes.
const Size = 16

// R is the reduction polynomial for doubling over GF(2^128): x^128 + x^7 +
// x^2 + x + 1.
const R = 0x87

// Block is a 16-byte value with value semantics; the zero Block is the
// all-zero block.
type Block [Size]byte

// Select performs a constant-time branch: it returns a if subject is 1
// and b if subject is 0, without a data-dependent branch. subject must
// be 0 or 1; other values mix bits of a and b.
func Select(subject, a, b byte) byte {
	mask := -subject // 0x00 or 0xff
	return (mask & a) | (^mask & b)
}

// Clear resets the block to all zeroes.
func (blk *Block) Clear() {
	*blk = Block{}
}

// Clone returns a copy of the block.
func (blk *Block) Clone() Block {
	return *blk
}

// XorInto XORs src into the block in place. src must be exactly Size
// bytes.
func (blk *Block) XorInto(src []byte) {
	if len(src) != Size {
		panic("block: xor operand must be 16 bytes")
	}
	for i := range blk {
		blk[i] ^= src[i]
	}
}

// Dbl doubles the block in place as an element of GF(2^128), treating it
// as a big-endian integer: shift left by one bit and, if a 1 bit carried
// out of the top, XOR the reduction polynomial into the low byte.
func (blk *Block) Dbl() {
	var carry byte
	for i := Size - 1; i >= 0; i-- {
		next := blk[i] >> 7
		blk[i] = (blk[i] << 1) | carry
		carry = next
	}
	blk[Size-1] ^= Select(carry, R, 0)
}

// Encrypt replaces the block with AES_K(block) using the given ECB-mode
// block cipher.
func (blk *Block) Encrypt(c cipher.Block) {
	c.Encrypt(blk[:], blk[:])
}

// Pad returns a 16-byte block holding data followed by the 0x80 marker
// byte and zero fill. len(data) must be strictly less than Size.
func Pad(data []byte) Block {
	if len(data) >= Size {
		panic("block: pad input must be shorter than 16 bytes")
	}
	var out Block
	copy(out[:], data)
	out[len(data)] = 0x80
	return out
}

// XorEnd returns a copy of data with the last Size bytes XORed against
// d. len(data) must be at least Size.
func XorEnd(data []byte, d Block) []byte {
	if len(data) < Size {
		panic("block: xorend input must be at least 16 bytes")
	}
	out := make([]byte, len(data))
	copy(out, data)
	tail := out[len(out)-Size:]
	for i := range tail {
		tail[i] ^= d[i]
	}
	return out
}
