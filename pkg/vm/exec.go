package vm

import (
	"errors"

	"github.com/synacor-vm/synacor/pkg/word"
)

// ErrInputExhausted is returned by Run/Step when IN needs another
// input byte and the underlying stream has nothing left to give.
var ErrInputExhausted = errors.New("vm: input exhausted")

// advanceIP moves ip to the next address, or raises BAD_INTEGER|ERROR
// in place of wrapping if ip is already at MaxAddress (§3: "incrementing
// an address that equals 32767 is undefined input... must flag this as
// a fault"). word.Address.Incr itself just wraps; this is the caller
// that owes the fault.
func (m *Machine) advanceIP() {
	m.ip = m.nextAddress(m.ip)
}

// nextAddress is advanceIP's logic factored out so OpCall's two-word
// return-address computation can share the same boundary check instead
// of calling word.Address.Incr directly.
func (m *Machine) nextAddress(a word.Address) word.Address {
	if a == word.MaxAddress {
		m.flags = m.flags.Set(FlagBadInteger | FlagError)
		return a
	}
	return a.Incr()
}

// Step fetches, decodes, and executes exactly one instruction,
// advancing ip past it unless the instruction itself assigned ip
// (control flow). It returns ErrInputExhausted if an IN instruction
// blocked on exhausted input, and the output sink's error if OUT fails
// to write; all machine faults are reported through Flags, not
// through the returned error.
func (m *Machine) Step() error {
	opWord := m.memory.Read(m.ip, &m.flags)
	op := Opcode(opWord)
	opIP := m.ip
	m.advanceIP()

	if !op.Valid() {
		m.flags = m.flags.Set(FlagError)
		return nil
	}

	args := make([]uint16, op.NumArgs())
	for i := range args {
		args[i] = uint16(m.memory.Read(m.ip, &m.flags))
		m.advanceIP()
	}

	switch op {
	case OpHalt:
		m.flags = m.flags.Set(FlagHalted)
		// HALT leaves ip pointing at the halt opcode itself rather
		// than past it: there is no next instruction to resume at,
		// and the reference image dumps ip at the halting opcode.
		m.ip = opIP

	case OpSet:
		dst := m.resolveDestination(args[0])
		*dst = m.valueOf(args[1])

	case OpPush:
		m.push(m.valueOf(args[0]))

	case OpPop:
		dst := m.resolveDestination(args[0])
		*dst = m.pop()

	case OpEq:
		dst := m.resolveDestination(args[0])
		if m.valueOf(args[1]) == m.valueOf(args[2]) {
			*dst = 1
		} else {
			*dst = 0
		}

	case OpGt:
		dst := m.resolveDestination(args[0])
		if m.valueOf(args[1]) > m.valueOf(args[2]) {
			*dst = 1
		} else {
			*dst = 0
		}

	case OpJmp:
		m.ip = word.Address(m.valueOf(args[0]))

	case OpJt:
		if m.valueOf(args[0]) != 0 {
			m.ip = word.Address(m.valueOf(args[1]))
		}

	case OpJf:
		if m.valueOf(args[0]) == 0 {
			m.ip = word.Address(m.valueOf(args[1]))
		}

	case OpAdd:
		dst := m.resolveDestination(args[0])
		*dst = m.valueOf(args[1]).Add(m.valueOf(args[2]))

	case OpMult:
		dst := m.resolveDestination(args[0])
		*dst = m.valueOf(args[1]).Mul(m.valueOf(args[2]))

	case OpMod:
		dst := m.resolveDestination(args[0])
		divisor := m.valueOf(args[2])
		if divisor == 0 {
			m.flags = m.flags.Set(FlagError)
			break
		}
		*dst = m.valueOf(args[1]).Mod(divisor)

	case OpAnd:
		dst := m.resolveDestination(args[0])
		*dst = m.valueOf(args[1]).And(m.valueOf(args[2]))

	case OpOr:
		dst := m.resolveDestination(args[0])
		*dst = m.valueOf(args[1]).Or(m.valueOf(args[2]))

	case OpNot:
		dst := m.resolveDestination(args[0])
		*dst = m.valueOf(args[1]).Not()

	case OpRmem:
		dst := m.resolveDestination(args[0])
		*dst = m.memory.Read(word.Address(m.valueOf(args[1])), &m.flags)

	case OpWmem:
		m.memory.Write(word.Address(m.valueOf(args[0])), m.valueOf(args[1]), &m.flags)

	case OpCall:
		ret := opIP
		ret = m.nextAddress(ret)
		ret = m.nextAddress(ret)
		m.push(word.Word(ret))
		m.ip = word.Address(m.valueOf(args[0]))

	case OpRet:
		if m.stackEmpty() {
			m.flags = m.flags.Set(FlagHalted)
			break
		}
		m.ip = word.Address(m.pop())

	case OpOut:
		if err := m.out.WriteByte(m.valueOf(args[0]).LowByte()); err != nil {
			return err
		}

	case OpIn:
		dst := m.resolveDestination(args[0])
		b, err := m.in.ReadByte()
		if err != nil {
			m.ip = opIP // retry this instruction once input is available
			return ErrInputExhausted
		}
		*dst = word.Word(b)

	case OpNoop:
		// nothing to do

	default:
		m.flags = m.flags.Set(FlagError)
	}

	m.runObservers(opIP)
	return nil
}

// Run executes instructions until the machine halts, faults, a pause
// is requested, or a Step returns an error. It returns the error from
// the last Step call, if any.
//
// Per §3's invariant, a fault does not stop the loop mid-stride: the
// instruction that raises ERROR still completes, and the loop grants
// exactly one further instruction before forcing a stop, so that a
// HALT immediately following a fault (the common case — faulting code
// is usually about to halt anyway) still gets to run and contribute
// its own HALTED flag to the final state.
func (m *Machine) Run() error {
	m.state = Running
	for {
		if m.pauseRequested {
			m.pauseRequested = false
			m.state = Paused
			return nil
		}
		erroredBefore := m.flags.Has(FlagError)
		if err := m.Step(); err != nil {
			return err
		}
		if m.flags.Has(FlagHalted) {
			m.state = Terminated
			return nil
		}
		if erroredBefore {
			m.state = Terminated
			return nil
		}
	}
}
