package vm

import "github.com/synacor-vm/synacor/pkg/word"

// Opcode is a raw instruction word. Valid opcodes are in {0..21};
// anything else is WrongOpcode.
type Opcode word.Word

// The 22 opcodes of the Synacor architecture, in their numeric order.
const (
	OpHalt Opcode = iota
	OpSet
	OpPush
	OpPop
	OpEq
	OpGt
	OpJmp
	OpJt
	OpJf
	OpAdd
	OpMult
	OpMod
	OpAnd
	OpOr
	OpNot
	OpRmem
	OpWmem
	OpCall
	OpRet
	OpOut
	OpIn
	OpNoop

	// opcodeCount is the number of legal opcodes; anything >= this is
	// WRONG_OPCODE.
	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	OpHalt: "halt",
	OpSet:  "set",
	OpPush: "push",
	OpPop:  "pop",
	OpEq:   "eq",
	OpGt:   "gt",
	OpJmp:  "jmp",
	OpJt:   "jt",
	OpJf:   "jf",
	OpAdd:  "add",
	OpMult: "mult",
	OpMod:  "mod",
	OpAnd:  "and",
	OpOr:   "or",
	OpNot:  "not",
	OpRmem: "rmem",
	OpWmem: "wmem",
	OpCall: "call",
	OpRet:  "ret",
	OpOut:  "out",
	OpIn:   "in",
	OpNoop: "noop",
}

// argCounts holds the fixed operand count of each opcode (§4.4).
var argCounts = [opcodeCount]int{
	OpHalt: 0,
	OpSet:  2,
	OpPush: 1,
	OpPop:  1,
	OpEq:   3,
	OpGt:   3,
	OpJmp:  1,
	OpJt:   2,
	OpJf:   2,
	OpAdd:  3,
	OpMult: 3,
	OpMod:  3,
	OpAnd:  3,
	OpOr:   3,
	OpNot:  2,
	OpRmem: 2,
	OpWmem: 2,
	OpCall: 1,
	OpRet:  0,
	OpOut:  1,
	OpIn:   1,
	OpNoop: 0,
}

// Valid reports whether op is one of the 22 legal opcodes.
func (op Opcode) Valid() bool {
	return op < opcodeCount
}

// String returns the mnemonic for op, or "?unknown?" if op is out of
// range.
func (op Opcode) String() string {
	if !op.Valid() {
		return "?unknown?"
	}
	return opcodeNames[op]
}

// NumArgs returns the fixed argument count for op. Callers must check
// Valid first; NumArgs panics on an out-of-range opcode rather than
// guessing an arity.
func (op Opcode) NumArgs() int {
	return argCounts[op]
}

// MnemonicToOpcode maps an assembler mnemonic to its opcode. It is
// built from the same name table as Opcode.String, so the assembler's
// encoding and the mnemonic rendering used for disassembly and tracing
// can never drift.
var MnemonicToOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, opcodeCount)
	for op, name := range opcodeNames {
		m[name] = Opcode(op)
	}
	return m
}()
