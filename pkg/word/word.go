// Package word implements the 15-bit unsigned integer that is the
// fundamental value type of the Synacor architecture.
//
// A Word always holds a value in {0 .. 32767}; the top bit of its
// 16-bit container is reserved at the operand-encoding layer (see
// package vm) to distinguish literals from register references, so
// arithmetic here is defined modulo 32768 and never produces a value
// with that bit set.
package word

import "encoding/binary"

// Modulus is the size of the Word value space. Every arithmetic
// operation wraps modulo Modulus.
const Modulus = 1 << 15

// Word is a 15-bit unsigned integer in {0 .. Modulus-1}.
type Word uint16

// New constructs a Word from any integer, taking its value mod
// Modulus. Negative inputs wrap the same way Go's %/modulo would
// after normalizing into the non-negative range.
func New(v int) Word {
	m := v % Modulus
	if m < 0 {
		m += Modulus
	}
	return Word(m)
}

// Int returns the Word's value as a plain int.
func (w Word) Int() int {
	return int(w)
}

// Add returns (w + o) mod Modulus.
func (w Word) Add(o Word) Word {
	return Word((uint32(w) + uint32(o)) % Modulus)
}

// Sub returns (w - o) mod Modulus.
func (w Word) Sub(o Word) Word {
	return Word((uint32(w) + Modulus - uint32(o)) % Modulus)
}

// Mul returns (w * o) mod Modulus.
func (w Word) Mul(o Word) Word {
	return Word((uint32(w) * uint32(o)) % Modulus)
}

// Mod returns w mod o. The caller must check o != 0 first (the vm's
// MOD instruction does, and raises FlagError instead); Mod panics on a zero divisor rather than
// silently returning w, so that a MOD_BY_ZERO fault can never be
// mistaken for a legitimate zero result.
func (w Word) Mod(o Word) Word {
	return w % o
}

// And returns the bitwise AND of w and o over the 15 live bits.
func (w Word) And(o Word) Word {
	return w & o
}

// Or returns the bitwise OR of w and o over the 15 live bits.
func (w Word) Or(o Word) Word {
	return w | o
}

// Not returns the 15-bit bitwise inverse of w: (^w) & 0x7FFF.
// Not(0) == 0x7FFF.
func (w Word) Not() Word {
	return ^w & (Modulus - 1)
}

// Incr returns w+1 mod Modulus.
func (w Word) Incr() Word {
	return w.Add(1)
}

// Decr returns w-1 mod Modulus.
func (w Word) Decr() Word {
	return w.Sub(1)
}

// Less reports whether w < o under natural unsigned comparison.
func (w Word) Less(o Word) bool {
	return w < o
}

// Equal reports whether w == o.
func (w Word) Equal(o Word) bool {
	return w == o
}

// LowByte returns the low 8 bits of w, the byte OUT emits.
func (w Word) LowByte() byte {
	return byte(w & 0xFF)
}

// SetLow returns w with its low byte replaced by b, high byte
// unchanged. This and SetHigh are the two functions §9's design notes
// call for in place of byte-level references into a Word: storage
// stays a single 16-bit value, and byte access is explicit at every
// call site.
func (w Word) SetLow(b byte) Word {
	return Word(uint16(w)&0xFF00 | uint16(b))
}

// SetHigh returns w with its high byte replaced by b, low byte
// unchanged. The result is masked back into the 15-bit domain: a
// caller that sets a high byte with bit 7 set will have it cleared,
// since no Word may carry the 16th bit.
func (w Word) SetHigh(b byte) Word {
	return Word(uint16(b)<<8|uint16(w)&0x00FF) & (Modulus - 1)
}

// Encode writes w little-endian into buf[0:2]: buf[0] = w & 0xFF,
// buf[1] = (w >> 8) & 0xFF.
func (w Word) Encode(buf []byte) {
	binary.LittleEndian.PutUint16(buf, uint16(w))
}

// Decode reads a little-endian Word from buf[0:2].
func Decode(buf []byte) Word {
	return Word(binary.LittleEndian.Uint16(buf))
}

// Address is a Word used as a memory index. The distinct type exists
// so the compiler catches accidental interchange of addresses,
// register indices, and plain literal values.
type Address Word

// NewAddress constructs an Address from an int, wrapping mod Modulus
// exactly like New. Callers that need a hard bounds check (rather
// than modular wraparound) should compare against MaxAddress
// themselves; see vm.Memory for that policy.
func NewAddress(v int) Address {
	return Address(New(v))
}

// MaxAddress is the highest legal address, 32767.
const MaxAddress = Address(Modulus - 1)

// Int returns the address as a plain int.
func (a Address) Int() int {
	return int(a)
}

// Word views the address as a Word.
func (a Address) Word() Word {
	return Word(a)
}

// Incr returns a+1. Incrementing MaxAddress is undefined input per
// the spec; callers must check a != MaxAddress first. Incr itself
// wraps (mod Modulus) rather than panicking, since the fault is the
// caller's responsibility to raise as BAD_INTEGER.
func (a Address) Incr() Address {
	return Address(Word(a).Incr())
}
