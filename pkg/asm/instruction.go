package asm

import "github.com/synacor-vm/synacor/pkg/vm"

// Instruction is one fully resolved source line: an opcode and its
// already-evaluated operand words, ready for little-endian emission.
// The Synacor grammar has no labels or forward references (§4.9), so
// unlike a label-resolving assembler there is nothing left to resolve
// between parsing and encoding — Encode is a pure, context-free
// function of the instruction itself.
type Instruction struct {
	Line     int
	Mnemonic string
	Opcode   vm.Opcode
	Operands []uint16
}

// Encode appends the instruction's opcode word followed by its
// operand words, each two bytes little-endian, to dst and returns the
// extended slice (§4.9's "each emitted pair is exactly 2 bytes").
func (ins Instruction) Encode(dst []byte) []byte {
	dst = appendWord(dst, uint16(ins.Opcode))
	for _, operand := range ins.Operands {
		dst = appendWord(dst, operand)
	}
	return dst
}

func appendWord(dst []byte, v uint16) []byte {
	return append(dst, byte(v), byte(v>>8))
}
