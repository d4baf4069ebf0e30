package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleOutThenHaltScenario(t *testing.T) {
	data, diags := Assemble("t.asm", strings.NewReader("out 'A'\nhalt\n"))
	require.Empty(t, diags)
	assert.Equal(t, []byte{0x13, 0x00, 0x41, 0x00, 0x00, 0x00}, data)
}

func TestAssembleRegistersAndIntegers(t *testing.T) {
	data, diags := Assemble("t.asm", strings.NewReader("set ra 1000\nadd rb ra rc\nhalt\n"))
	require.Empty(t, diags)

	// set ra, 1000
	assert.Equal(t, byte(1), data[0]) // OpSet
	assert.Equal(t, byte(0), data[1])
	assert.Equal(t, []byte{0x00, 0x80}, data[2:4]) // 32768 (ra) little-endian
	assert.Equal(t, []byte{0xE8, 0x03}, data[4:6]) // 1000 little-endian
}

func TestAssembleUnknownMnemonic(t *testing.T) {
	_, diags := Assemble("t.asm", strings.NewReader("frobnicate ra\n"))
	require.Len(t, diags, 1)
	assert.Equal(t, UnknownMnemonic, diags[0].Kind)
	assert.Equal(t, 1, diags[0].Line)
	assert.Equal(t, 1, diags[0].Col)
}

func TestAssembleBadOperand(t *testing.T) {
	_, diags := Assemble("t.asm", strings.NewReader("set ra 99999\n"))
	require.Len(t, diags, 1)
	assert.Equal(t, BadOperand, diags[0].Kind)
}

func TestAssembleRejectsLiteral32768(t *testing.T) {
	// §9's open question: this spec rejects the literal 32768 rather
	// than letting it alias register 0.
	_, diags := Assemble("t.asm", strings.NewReader("push 32768\n"))
	require.Len(t, diags, 1)
	assert.Equal(t, BadOperand, diags[0].Kind)
}

func TestAssembleTooManyArguments(t *testing.T) {
	_, diags := Assemble("t.asm", strings.NewReader("halt ra\n"))
	require.Len(t, diags, 1)
	assert.Equal(t, TooManyArgs, diags[0].Kind)
}

func TestAssembleCollectsMultipleDiagnostics(t *testing.T) {
	_, diags := Assemble("t.asm", strings.NewReader("bogus\nhalt rb\n"))
	require.Len(t, diags, 2)
	assert.Equal(t, UnknownMnemonic, diags[0].Kind)
	assert.Equal(t, TooManyArgs, diags[1].Kind)
}

func TestAssembleIgnoresCommentsAndBlankLines(t *testing.T) {
	data, diags := Assemble("t.asm", strings.NewReader("; a comment\n\n   \nhalt ; trailing comment\n"))
	require.Empty(t, diags)
	assert.Equal(t, []byte{0x00, 0x00}, data)
}

func TestCharacterLiteralEscapes(t *testing.T) {
	data, diags := Assemble("t.asm", strings.NewReader("out '\\n'\nhalt\n"))
	require.Empty(t, diags)
	assert.Equal(t, byte(0x0A), data[2])
}

func TestDiagnosticFormatHasCaretUnderline(t *testing.T) {
	_, diags := Assemble("bad.asm", strings.NewReader("frobnicate ra\n"))
	require.Len(t, diags, 1)
	formatted := diags[0].Format()
	assert.Contains(t, formatted, "bad.asm:1:1")
	assert.Contains(t, formatted, "frobnicate ra")
	lines := strings.Split(strings.TrimRight(formatted, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "^"))
}

func TestDisassembleAssembleRoundTrip(t *testing.T) {
	src := "set ra 5\nadd rb ra ra\nout rb\nhalt\n"
	data, diags := Assemble("t.asm", strings.NewReader(src))
	require.Empty(t, diags)

	disassembled, err := Disassemble(data)
	require.NoError(t, err)

	reassembled, diags := Assemble("round.asm", strings.NewReader(disassembled))
	require.Empty(t, diags)
	assert.Equal(t, data, reassembled)
}

func TestDisassembleRejectsUnknownOpcode(t *testing.T) {
	_, err := Disassemble([]byte{0xFF, 0xFF})
	assert.Error(t, err)
}
