// Package pmac implements the Parallelizable Message Authentication Code
// of Black and Rogaway (https://web.cs.ucdavis.edu/~rogaway/ocb/pmac.pdf)
// over an AES-ECB block cipher. It is one of the two MAC flavors SIV can
// be built from; the other, CMAC, is the external github.com/chmike/cmac-go
// package.
package pmac

import (
	"crypto/cipher"
	"crypto/subtle"
	"errors"
	"math/bits"

	"github.com/miscreant/miscreant-go/internal/block"
)

// initialTableSize is the number of L-table entries precomputed at
// construction. It covers messages up to 2^initialTableSize blocks
// without growing the table; the table grows on demand for longer
// messages.
const initialTableSize = 5

// ErrFinished is returned by Write, and is the value Sum panics with,
// when the PMAC instance has already produced a tag and has not been
// Reset.
var ErrFinished = errors.New("pmac: already finished, call Reset")

// PMAC computes a 16-byte PMAC tag incrementally. It implements
// hash.Hash. The zero value is not usable; construct with New.
type PMAC struct {
	cipher cipher.Block

	l    []block.Block // L[0] = AES_K(0), L[i] = dbl(L[i-1]), grown lazily
	lInv block.Block

	digest block.Block
	offset block.Block
	buf    block.Block
	pos    int // valid bytes in buf, 0..16
	ctr    uint64

	finished bool
}

// New returns a PMAC instance keyed by c, an AES (or any 16-byte block
// size) cipher in ECB mode. c must not be reused by other callers
// concurrently with this PMAC instance.
func New(c cipher.Block) *PMAC {
	if c.BlockSize() != block.Size {
		panic("pmac: cipher block size must be 16 bytes")
	}

	p := &PMAC{cipher: c}
	p.growTable(initialTableSize - 1)
	p.computeLInv()
	return p
}

// growTable extends the L table so that index n is valid, recomputing
// from the first principal L[0] = AES_K(0) each time since dbl is cheap
// and the table is rarely grown.
func (p *PMAC) growTable(n int) {
	if n < len(p.l) {
		return
	}
	var tmp block.Block
	tmp.Encrypt(p.cipher)

	p.l = make([]block.Block, n+1)
	for i := range p.l {
		p.l[i] = tmp
		tmp.Dbl()
	}
}

// computeLInv derives L^-1 = L[0] * x^-1 over GF(2^128): a right shift
// with a conditional XOR of R>>1 into the low byte and 0x80 into the
// high byte, selected on the original low bit of L[0], in constant time.
func (p *PMAC) computeLInv() {
	tmp := p.l[0]
	lastBit := tmp[block.Size-1] & 1

	for i := block.Size - 1; i > 0; i-- {
		carry := byte(subtle.ConstantTimeSelect(int(tmp[i-1]&1), 0x80, 0))
		tmp[i] = (tmp[i] >> 1) | carry
	}
	tmp[0] >>= 1
	tmp[0] ^= block.Select(lastBit, 0x80, 0)
	tmp[block.Size-1] ^= block.Select(lastBit, block.R>>1, 0)

	p.lInv = tmp
}

// Reset returns the PMAC instance to its initial state, ready to
// authenticate a new message. The L table (a pure function of the key)
// is preserved.
func (p *PMAC) Reset() {
	p.digest.Clear()
	p.offset.Clear()
	p.buf.Clear()
	p.pos = 0
	p.ctr = 0
	p.finished = false
}

// Size returns the tag length, 16 bytes.
func (p *PMAC) Size() int { return block.Size }

// BlockSize returns the underlying cipher's block size, 16 bytes.
func (p *PMAC) BlockSize() int { return block.Size }

// Write absorbs msg into the running tag. It never returns an error
// except ErrFinished.
//
// The buffer is only flushed once it is known that more input follows,
// so that Sum can tell a message whose length is a positive multiple of
// 16 bytes (pos == 16 at finalize) apart from one that merely fills the
// buffer exactly. Flushing eagerly is the classic PMAC porting bug.
func (p *PMAC) Write(msg []byte) (int, error) {
	if p.finished {
		return 0, ErrFinished
	}
	n := len(msg)

	remaining := block.Size - p.pos
	if len(msg) > remaining {
		copy(p.buf[p.pos:], msg[:remaining])
		msg = msg[remaining:]
		p.processBuffer()
	}

	for len(msg) > block.Size {
		copy(p.buf[:], msg[:block.Size])
		msg = msg[block.Size:]
		p.processBuffer()
	}

	if len(msg) > 0 {
		copy(p.buf[p.pos:p.pos+len(msg)], msg)
		p.pos += len(msg)
	}

	return n, nil
}

// processBuffer absorbs one full, non-final block from p.buf.
func (p *PMAC) processBuffer() {
	idx := bits.TrailingZeros64(p.ctr + 1)
	p.growTable(idx)
	p.offset.XorInto(p.l[idx][:])
	p.buf.XorInto(p.offset[:])
	p.ctr++

	p.buf.Encrypt(p.cipher)
	p.digest.XorInto(p.buf[:])
	p.pos = 0
}

// Sum appends the 16-byte PMAC tag to in and latches the instance;
// until Reset, further Write calls return ErrFinished and further Sum
// calls panic with it.
func (p *PMAC) Sum(in []byte) []byte {
	if p.finished {
		panic(ErrFinished)
	}

	if p.pos == block.Size {
		p.digest.XorInto(p.buf[:])
		p.digest.XorInto(p.lInv[:])
	} else {
		for i := 0; i < p.pos; i++ {
			p.digest[i] ^= p.buf[i]
		}
		p.digest[p.pos] ^= 0x80
	}

	p.digest.Encrypt(p.cipher)
	p.finished = true

	return append(in, p.digest[:]...)
}

// Finished reports whether Sum has been called without an intervening
// Reset.
func (p *PMAC) Finished() bool { return p.finished }
