package vm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/synacor-vm/synacor/pkg/word"
)

// serializedHeaderWords is the number of Word-sized fields written
// before the memory cells: ip, stack_base, stack_top, null register.
const serializedHeaderWords = 4

// SerializedSize is the exact byte length of a serialized machine
// image: flags (1) + 8 registers (2 each) + 4 header words (2 each) +
// all memory cells (2 each).
const SerializedSize = 1 + NumRegisters*2 + serializedHeaderWords*2 + MemorySize*2

// Serialize writes the full machine state to w as the concatenation,
// in order, of: flags (1 byte), the eight registers (2 bytes each,
// little-endian), instr_ptr, stack_base, stack_top, the null
// register, and then all 32768 memory cells in address order (§4.7).
// There is no header or version tag — the format is self-describing
// by position only.
func (m *Machine) Serialize(w io.Writer) error {
	bw := bufio.NewWriterSize(w, SerializedSize)

	if err := bw.WriteByte(byte(m.flags)); err != nil {
		return fmt.Errorf("vm: serialize flags: %w", err)
	}

	var buf [2]byte
	writeWord := func(v word.Word) error {
		v.Encode(buf[:])
		_, err := bw.Write(buf[:])
		return err
	}

	for i, r := range m.registers {
		if err := writeWord(r); err != nil {
			return fmt.Errorf("vm: serialize register %d: %w", i, err)
		}
	}
	if err := writeWord(word.Word(m.ip)); err != nil {
		return fmt.Errorf("vm: serialize ip: %w", err)
	}
	if err := writeWord(word.Word(m.stackBase)); err != nil {
		return fmt.Errorf("vm: serialize stack_base: %w", err)
	}
	if err := writeWord(word.Word(m.stackTop)); err != nil {
		return fmt.Errorf("vm: serialize stack_top: %w", err)
	}
	if err := writeWord(m.nullRegister); err != nil {
		return fmt.Errorf("vm: serialize null register: %w", err)
	}

	var ioErr error
	m.memory.Each(func(_ word.Address, w word.Word) {
		if ioErr != nil {
			return
		}
		ioErr = writeWord(w)
	})
	if ioErr != nil {
		return fmt.Errorf("vm: serialize memory: %w", ioErr)
	}

	return bw.Flush()
}

// Deserialize replaces m's entire state by reading the layout Serialize
// writes. If the stream is shorter than SerializedSize it returns an
// error wrapping io.EOF (the stream ended at a field boundary) or
// io.ErrUnexpectedEOF (it ended inside a field), and m is unchanged.
func (m *Machine) Deserialize(r io.Reader) error {
	br := bufio.NewReaderSize(r, SerializedSize)

	flagByte, err := br.ReadByte()
	if err != nil {
		return fmt.Errorf("vm: deserialize flags: %w", err)
	}

	var buf [2]byte
	readWord := func() (word.Word, error) {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return 0, err
		}
		return word.Decode(buf[:]), nil
	}

	var registers [NumRegisters]word.Word
	for i := range registers {
		v, err := readWord()
		if err != nil {
			return fmt.Errorf("vm: deserialize register %d: %w", i, err)
		}
		registers[i] = v
	}

	ip, err := readWord()
	if err != nil {
		return fmt.Errorf("vm: deserialize ip: %w", err)
	}
	stackBase, err := readWord()
	if err != nil {
		return fmt.Errorf("vm: deserialize stack_base: %w", err)
	}
	stackTop, err := readWord()
	if err != nil {
		return fmt.Errorf("vm: deserialize stack_top: %w", err)
	}
	nullRegister, err := readWord()
	if err != nil {
		return fmt.Errorf("vm: deserialize null register: %w", err)
	}

	var cells [MemorySize]word.Word
	for i := range cells {
		v, err := readWord()
		if err != nil {
			return fmt.Errorf("vm: deserialize memory cell %d: %w", i, err)
		}
		cells[i] = v
	}

	m.flags = Flags(flagByte)
	m.registers = registers
	m.ip = word.Address(ip)
	m.stackBase = word.Address(stackBase)
	m.stackTop = word.Address(stackTop)
	m.nullRegister = nullRegister
	m.memory.cells = cells
	return nil
}
