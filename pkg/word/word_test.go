package word

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArithmeticWraps(t *testing.T) {
	assert.Equal(t, Word(0), New(Modulus))
	assert.Equal(t, Word(Modulus-1), New(-1))
	assert.Equal(t, Word(5), New(Modulus+5))
}

func TestAddSubMulWrap(t *testing.T) {
	max := Word(Modulus - 1)
	assert.Equal(t, Word(1), max.Add(2))
	assert.Equal(t, Word(0), max.Sub(max))
	assert.Equal(t, max, Word(0).Sub(1))
	assert.Equal(t, Word(6), Word(3).Mul(2))
	assert.Equal(t, Word(Modulus-2), max.Mul(2)) // (32767*2) % 32768 == 32766
}

func TestIdentityLaws(t *testing.T) {
	for _, a := range []Word{0, 1, 7, 1000, Modulus - 1} {
		assert.Equal(t, a, a.Add(0))
		assert.Equal(t, a, a.Mul(1))
		assert.Equal(t, Word(0), a.Mul(0))
		assert.Equal(t, a, a.Not().Not())
	}
}

func TestNotZero(t *testing.T) {
	assert.Equal(t, Word(0x7FFF), Word(0).Not())
}

func TestModPanicsOnZeroDivisor(t *testing.T) {
	assert.Panics(t, func() {
		_ = Word(5).Mod(0)
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, w := range []Word{0, 1, 255, 256, 32767} {
		buf := make([]byte, 2)
		w.Encode(buf)
		assert.Equal(t, w, Decode(buf))
	}
	buf := make([]byte, 2)
	Word(0x1234).Encode(buf)
	assert.Equal(t, byte(0x34), buf[0])
	assert.Equal(t, byte(0x12), buf[1])
}

func TestSetLowSetHigh(t *testing.T) {
	w := Word(0x1234)
	assert.Equal(t, Word(0x1256), w.SetLow(0x56))
	assert.Equal(t, Word(0x5634), w.SetHigh(0x56))
	// setting a high byte with the top bit set is masked back into range
	assert.LessOrEqual(t, uint16(w.SetHigh(0xFF)), uint16(Modulus-1))
}

func TestAddressIncr(t *testing.T) {
	a := NewAddress(10)
	assert.Equal(t, NewAddress(11), a.Incr())
	assert.Equal(t, MaxAddress, NewAddress(Modulus-1))
}
