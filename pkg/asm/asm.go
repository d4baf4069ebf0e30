package asm

import (
	"fmt"
	"io"
	"strings"

	"github.com/synacor-vm/synacor/pkg/vm"
	"github.com/synacor-vm/synacor/pkg/word"
)

// InstructionOrDiagnostic carries exactly one of a resolved
// Instruction or a Diagnostic down the assembler's output channel.
type InstructionOrDiagnostic struct {
	Instruction *Instruction
	Diagnostic  *Diagnostic
}

// StartAssembler starts the assembler in a background goroutine and
// returns a channel of per-line results, mirroring the teacher's
// two-stage lexer/parser pipeline shape even though this grammar has
// no labels left to resolve in a second pass.
func StartAssembler(file string, r io.Reader) <-chan InstructionOrDiagnostic {
	out := make(chan InstructionOrDiagnostic)
	go assemblerAsync(file, r, out)
	return out
}

func assemblerAsync(file string, r io.Reader, out chan<- InstructionOrDiagnostic) {
	defer close(out)
	lines, err := readLines(r)
	if err != nil {
		out <- InstructionOrDiagnostic{Diagnostic: &Diagnostic{File: file, Message: err.Error()}}
		return
	}
	for _, sl := range lines {
		instr, diag := parseLine(file, sl)
		if diag != nil {
			out <- InstructionOrDiagnostic{Diagnostic: diag}
			continue
		}
		if instr == nil {
			continue // blank line or comment-only line
		}
		out <- InstructionOrDiagnostic{Instruction: instr}
	}
}

// Assemble drains StartAssembler and returns the assembled image. Per
// §4.9's failure policy, any diagnostic prevents output from being
// produced at all: Assemble still drains every line (to surface as
// many diagnostics as possible) before deciding, but returns a nil
// image if diags is non-empty.
func Assemble(file string, r io.Reader) ([]byte, []Diagnostic) {
	var out []byte
	var diags []Diagnostic
	for item := range StartAssembler(file, r) {
		if item.Diagnostic != nil {
			diags = append(diags, *item.Diagnostic)
			continue
		}
		out = item.Instruction.Encode(out)
	}
	if len(diags) > 0 {
		return nil, diags
	}
	return out, nil
}

// Disassemble renders a program image as mnemonic source text, one
// instruction per line. It exists to exercise the round-trip law in
// §8 ("assembler composed with a disassembler is the identity on
// well-formed programs") — operands render as decimal integers or
// register names, never as character literals, since a literal's
// original source spelling is not recoverable from its word value.
func Disassemble(data []byte) (string, error) {
	var b strings.Builder
	pos := 0
	for pos < len(data) {
		if pos+2 > len(data) {
			return "", fmt.Errorf("asm: trailing odd byte at offset %d", pos)
		}
		opWord := word.Decode(data[pos : pos+2])
		pos += 2
		op := vm.Opcode(opWord)
		if !op.Valid() {
			return "", fmt.Errorf("asm: unknown opcode %d at offset %d", opWord, pos-2)
		}

		b.WriteString(op.String())
		for i := 0; i < op.NumArgs(); i++ {
			if pos+2 > len(data) {
				return "", fmt.Errorf("asm: truncated operand for %s at offset %d", op, pos)
			}
			arg := word.Decode(data[pos : pos+2])
			pos += 2
			b.WriteByte(' ')
			if int(arg) >= vm.MemorySize {
				b.WriteByte('r')
				b.WriteByte('a' + byte(int(arg)-vm.MemorySize))
			} else {
				fmt.Fprintf(&b, "%d", arg)
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
