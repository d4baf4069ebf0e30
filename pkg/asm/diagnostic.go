package asm

import (
	"fmt"
	"strings"
)

// DiagnosticKind names the three error categories the assembler can
// raise for a single instruction line (§4.9).
type DiagnosticKind int

const (
	// UnknownMnemonic: the first token on a non-empty, non-comment
	// line is not one of the 22 opcode names.
	UnknownMnemonic DiagnosticKind = iota
	// BadOperand: an operand token is an ill-formed integer, register,
	// or character literal, or out of range.
	BadOperand
	// TooManyArgs: the line supplies more operand tokens than the
	// mnemonic's fixed arity.
	TooManyArgs
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnknownMnemonic:
		return "unknown mnemonic"
	case BadOperand:
		return "bad operand"
	case TooManyArgs:
		return "too many arguments"
	default:
		return "error"
	}
}

// Diagnostic is one assembler error, reported with enough position
// information to render a caret/tilde underline beneath the offending
// token (§4.9).
type Diagnostic struct {
	Kind    DiagnosticKind
	File    string
	Line    int
	Col     int
	Width   int // number of characters the underline spans, minimum 1
	Message string
	source  string // the offending line, verbatim
}

// Error implements error so Diagnostic can be returned/wrapped like
// any other failure, while Format renders the full multi-line
// source-pointing form for the CLI.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Col, d.Kind, d.Message)
}

// Format renders the diagnostic the way the assembler CLI prints it:
// file:line:col, the message, the source line verbatim, and a
// caret/tilde underline spanning the offending token.
func (d Diagnostic) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s: %s\n", d.File, d.Line, d.Col, d.Kind, d.Message)
	b.WriteString(d.source)
	if !strings.HasSuffix(d.source, "\n") {
		b.WriteByte('\n')
	}

	width := d.Width
	if width < 1 {
		width = 1
	}
	b.WriteString(strings.Repeat(" ", d.Col-1))
	b.WriteByte('^')
	if width > 1 {
		b.WriteString(strings.Repeat("~", width-1))
	}
	b.WriteByte('\n')
	return b.String()
}
