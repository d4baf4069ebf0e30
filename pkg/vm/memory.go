package vm

import "github.com/synacor-vm/synacor/pkg/word"

// MemorySize is the number of addressable Words: 32768.
const MemorySize = word.Modulus

// Memory is a dense array of MemorySize Words. The stack and the
// program image share this address space; Memory enforces only the
// hard {0..MemorySize-1} bound, not any partition between code, data,
// and stack — that separation is the loaded program's responsibility.
type Memory struct {
	cells [MemorySize]word.Word
}

// Read returns the Word at addr, or raises FlagBadInteger|FlagError
// and returns 0 if addr is out of bounds.
func (m *Memory) Read(addr word.Address, f *Flags) word.Word {
	if !m.inBounds(addr) {
		*f = f.Set(FlagBadInteger | FlagError)
		return 0
	}
	return m.cells[addr]
}

// Write stores v at addr, or raises FlagBadInteger|FlagError if addr
// is out of bounds.
func (m *Memory) Write(addr word.Address, v word.Word, f *Flags) {
	if !m.inBounds(addr) {
		*f = f.Set(FlagBadInteger | FlagError)
		return
	}
	m.cells[addr] = v
}

func (m *Memory) inBounds(addr word.Address) bool {
	return addr.Int() >= 0 && addr.Int() < MemorySize
}

// Load consumes bytes two at a time (low byte, then high byte) from
// src and stores each reconstructed Word starting at address 0,
// advancing one address per word. It returns the number of words
// loaded. A trailing odd byte is ignored the way the reference image
// format never produces one (program images are always an even
// number of bytes).
func (m *Memory) Load(src []byte) int {
	n := 0
	for i := 0; i+1 < len(src); i += 2 {
		m.cells[n] = word.Decode(src[i : i+2])
		n++
		if n >= MemorySize {
			break
		}
	}
	return n
}

// Each calls fn for every address in order, for serialization.
func (m *Memory) Each(fn func(addr word.Address, w word.Word)) {
	for i, w := range m.cells {
		fn(word.Address(i), w)
	}
}

// Slice returns the live memory backing array for bulk I/O
// (serialization). Callers must not retain it past the Memory's
// lifetime.
func (m *Memory) Slice() []word.Word {
	return m.cells[:]
}
