// Package asm contains the companion assembler for the Synacor
// architecture virtual machine: a line-oriented compiler from
// mnemonic source text to the little-endian word stream pkg/vm loads
// as a program image.
package asm

// tokenKind classifies a single lexical token.
type tokenKind int

const (
	tokenMnemonic tokenKind = iota
	tokenRegister
	tokenCharLiteral
	tokenIntLiteral
	tokenInvalid
)

// token is one lexical unit together with its position in the source
// line, used both for encoding and for diagnostic rendering (§4.9).
type token struct {
	kind tokenKind
	text string // verbatim source text, including quotes for char literals
	line int    // left 0 by lexLine; parseLine stamps the line number onto diagnostics
	col  int    // 1-based, start of the token
	// value and hasValue are not populated by the lexer: the parser
	// classifies and evaluates every operand (register, character
	// literal, integer) from its text.
	value    uint16
	hasValue bool
}

// escapes maps the single-letter escape codes named in §4.9's token
// grammar to their byte value.
var escapes = map[byte]byte{
	'a':  0x07,
	'b':  0x08,
	'e':  0x1B,
	'f':  0x0C,
	'n':  0x0A,
	'r':  0x0D,
	't':  0x09,
	'v':  0x0B,
	'\\': 0x5C,
	'\'': 0x27,
	'"':  0x22,
	'?':  0x3F,
}
