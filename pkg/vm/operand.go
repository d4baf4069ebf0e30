package vm

import "github.com/synacor-vm/synacor/pkg/word"

// NumRegisters is the number of general-purpose registers.
const NumRegisters = 8

// operandKind classifies a raw 16-bit operand word.
type operandKind int

const (
	operandLiteral operandKind = iota
	operandRegister
	operandInvalid
)

// classify returns the kind of a raw operand word v and, for
// operandRegister, its register index.
func classify(v uint16) (operandKind, int) {
	switch {
	case v <= word.Modulus-1:
		return operandLiteral, 0
	case v <= word.Modulus-1+NumRegisters:
		return operandRegister, int(v) - (word.Modulus - 1) - 1
	default:
		return operandInvalid, 0
	}
}

// valueOf returns the numeric Word value that raw operand v
// represents: the literal itself, the referenced register's current
// value, or the null register's value (with FlagBadInteger|FlagError
// set) if v is invalid.
func (m *Machine) valueOf(v uint16) word.Word {
	switch kind, idx := classify(v); kind {
	case operandLiteral:
		return word.Word(v)
	case operandRegister:
		return m.registers[idx]
	default:
		m.flags = m.flags.Set(FlagBadInteger | FlagError)
		return m.nullRegister
	}
}

// resolveDestination returns a pointer to the register raw operand v
// refers to. If v is a literal, it sets FlagWriteOnLiteral|FlagError;
// if invalid, it sets FlagBadInteger|FlagError. In both fault cases
// the returned pointer is the null register, so the caller can finish
// the instruction harmlessly.
func (m *Machine) resolveDestination(v uint16) *word.Word {
	switch kind, idx := classify(v); kind {
	case operandRegister:
		return &m.registers[idx]
	case operandLiteral:
		m.flags = m.flags.Set(FlagWriteOnLiteral | FlagError)
		return &m.nullRegister
	default:
		m.flags = m.flags.Set(FlagBadInteger | FlagError)
		return &m.nullRegister
	}
}
