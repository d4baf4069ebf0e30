// Package vm implements the execution engine for the Synacor
// architecture: a uniformly addressed memory of 32768 cells, eight
// general-purpose registers, and an operand-tagged unbounded stack
// held inside that same memory.
package vm

import (
	"io"

	"github.com/synacor-vm/synacor/pkg/word"
)

// State is one of the engine's three externally visible run states.
type State int

const (
	// Running is the default state; Step/Run execute instructions.
	Running State = iota
	// Paused is entered when a pause is requested at an instruction
	// boundary (§4.5, §4.10); Run returns control to the caller.
	Paused
	// Terminated is entered when Run stops after an instruction that
	// left FlagHalted set, or after the one further instruction a
	// fault is granted.
	Terminated
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Machine is the full Synacor machine state: flags, eight registers,
// the instruction pointer, the stack's footprint, and memory. The
// zero value is not ready to use; construct one with New.
type Machine struct {
	flags     Flags
	ip        word.Address
	memory    Memory
	stackBase word.Address
	stackTop  word.Address

	// nullRegister is the sentinel sink for writes targeting an
	// invalid destination after a fault (§3).
	nullRegister word.Word

	registers [NumRegisters]word.Word

	in  *InputBuffer
	out *OutputBuffer

	state State

	// pauseRequested is consulted between instructions (§4.10); it is
	// distinct from Paused state. It is a plain field with no
	// synchronization.
	pauseRequested bool

	observers   []*observerSlot
	observerSeq int
}

// New constructs a Machine with program loaded from image (a raw
// little-endian word stream, §6) and stdin/stdout wired to in/out.
// The stack base is established at the first address after the
// loaded image, rounded up to the next 8-word boundary (§3); stackTop
// starts equal to stackBase.
func New(image []byte, in io.Reader, out io.Writer) *Machine {
	m := &Machine{
		in:  NewInputBuffer(in),
		out: NewOutputBuffer(out),
	}
	m.in.OnPause(m.RequestPause)
	loaded := m.memory.Load(image)
	base := word.Address(roundUp8(loaded))
	m.stackBase = base
	m.stackTop = base
	return m
}

func roundUp8(n int) int {
	return (n + 7) &^ 7
}

// Flags returns the machine's current fault/run-state bitset.
func (m *Machine) Flags() Flags { return m.flags }

// Registers returns a copy of the eight general-purpose registers.
func (m *Machine) Registers() [NumRegisters]word.Word { return m.registers }

// IP returns the current instruction pointer.
func (m *Machine) IP() word.Address { return m.ip }

// SetIP sets the instruction pointer. Exposed for observers (e.g. a
// debugger) and for deserialization.
func (m *Machine) SetIP(addr word.Address) { m.ip = addr }

// StackBase returns the address of the lowest stack slot.
func (m *Machine) StackBase() word.Address { return m.stackBase }

// StackTop returns the next free stack slot.
func (m *Machine) StackTop() word.Address { return m.stackTop }

// State returns the engine's externally visible run state.
func (m *Machine) State() State { return m.state }

// Memory exposes the machine's memory for read-only inspection (dump
// formatting, tests). Mutation should go through Step/Run so that
// flags stay consistent.
func (m *Machine) Memory() *Memory { return &m.memory }

// Output returns the underlying output sink, e.g. for flush-on-exit.
func (m *Machine) Output() *OutputBuffer { return m.out }

// RequestPause sets the cooperative pause flag consulted at the next
// instruction boundary (§4.10, §5). The flag is written without
// synchronization; the callers in this package (the input buffer's
// "~" sentinel and the trace observer) run on the run loop's own
// goroutine. It does not itself block or mutate machine state beyond
// the flag.
func (m *Machine) RequestPause() { m.pauseRequested = true }

// push writes v at stackTop and post-increments it.
func (m *Machine) push(v word.Word) {
	m.memory.Write(m.stackTop, v, &m.flags)
	m.stackTop = m.stackTop.Incr()
}

// pop pre-decrements stackTop and reads. Popping an empty stack (
// stackTop == stackBase) sets FlagStackUnderflow|FlagError but still
// returns the word last written at that slot (§3) — the decrement
// still happens, matching the spec's "still returns the word last
// written there".
func (m *Machine) pop() word.Word {
	if m.stackTop == m.stackBase {
		m.flags = m.flags.Set(FlagStackUnderflow | FlagError)
	}
	m.stackTop = word.Address(word.Word(m.stackTop).Decr())
	return m.memory.Read(m.stackTop, &m.flags)
}

// stackEmpty reports whether the stack currently holds no elements.
func (m *Machine) stackEmpty() bool {
	return m.stackTop == m.stackBase
}

