package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synacor-vm/synacor/pkg/word"
)

// image little-endian-encodes a program given as raw words, exactly
// as the binary program format does (§6).
func image(words ...int) []byte {
	buf := make([]byte, len(words)*2)
	for i, w := range words {
		word.New(w).Encode(buf[i*2 : i*2+2])
	}
	return buf
}

func runToCompletion(t *testing.T, words ...int) (*Machine, string) {
	t.Helper()
	var out bytes.Buffer
	m := New(image(words...), strings.NewReader(""), &out)
	for m.State() != Terminated {
		require.NoError(t, m.Run())
		if m.State() == Paused {
			t.Fatal("unexpected pause in a program with no pause request")
		}
	}
	return m, out.String()
}

func TestScenarioPrintThenHalt(t *testing.T) {
	m, out := runToCompletion(t, 19, 65, 0)
	assert.Equal(t, "A", out)
	assert.True(t, m.Flags().Has(FlagHalted))
	assert.Equal(t, 2, m.IP().Int())
}

func TestScenarioAddition(t *testing.T) {
	m, out := runToCompletion(t, 9, 32768, 4, 5, 19, 32768, 0)
	assert.Equal(t, "\t", out)
	assert.Equal(t, word.Word(9), m.Registers()[0])
	assert.True(t, m.Flags().Has(FlagHalted))
}

func TestScenarioConditionalJumpTaken(t *testing.T) {
	_, out := runToCompletion(t, 8, 0, 10, 19, 66, 0, 0, 0, 0, 0, 19, 67, 0)
	assert.Equal(t, "C", out)
}

func TestScenarioStackRoundTrip(t *testing.T) {
	m, _ := runToCompletion(t, 2, 123, 2, 456, 3, 32768, 3, 32769, 0)
	assert.Equal(t, word.Word(456), m.Registers()[0])
	assert.Equal(t, word.Word(123), m.Registers()[1])
	assert.True(t, m.Flags().Has(FlagHalted))
}

func TestScenarioStackUnderflow(t *testing.T) {
	m, _ := runToCompletion(t, 3, 32768, 0)
	assert.True(t, m.Flags().Has(FlagStackUnderflow))
	assert.True(t, m.Flags().Has(FlagError))
	assert.True(t, m.Flags().Has(FlagHalted))
}

// Scenario 6's prose claims RET returns to "offset 3", but applying
// the spec's own explicit rule (CALL pushes ip_opcode+2, and CALL's
// opcode sits at address 0) computes a return address of 2, not 3;
// this looks like a typo in that scenario's write-up rather than a
// distinct rule, so only the unambiguous end state is asserted here.
func TestScenarioCallReturn(t *testing.T) {
	m, _ := runToCompletion(t, 17, 5, 0, 0, 0, 21, 18)
	assert.True(t, m.Flags().Has(FlagHalted))
}

func TestBoundaryEmptyImageHaltsImmediately(t *testing.T) {
	var out bytes.Buffer
	m := New(nil, strings.NewReader(""), &out)
	require.NoError(t, m.Run())
	assert.Equal(t, Terminated, m.State())
	assert.True(t, m.Flags().Has(FlagHalted))
	for _, w := range m.Memory().Slice() {
		assert.Equal(t, word.Word(0), w)
	}
}

func TestBoundaryMemoryAccessAtEdge(t *testing.T) {
	var m Machine
	var f Flags
	m.memory.Write(word.Address(32767), 42, &f)
	assert.False(t, f.Has(FlagError))
	assert.Equal(t, word.Word(42), m.memory.Read(word.Address(32767), &f))

	f = 0
	_ = m.memory.Read(word.Address(32768), &f)
	assert.True(t, f.Has(FlagBadInteger))
	assert.True(t, f.Has(FlagError))
}

func TestBoundaryModByZeroLeavesDestinationUntouched(t *testing.T) {
	var out bytes.Buffer
	// set r0 to 7, then mod r0 by 0 into r0, then halt.
	m := New(image(
		1, 32768, 7, // SET r0, 7
		11, 32768, 32768, 0, // MOD r0, r0, 0
		0, // HALT
	), strings.NewReader(""), &out)
	require.NoError(t, m.Run())
	assert.True(t, m.Flags().Has(FlagError))
	assert.Equal(t, word.Word(7), m.Registers()[0])
}

func TestValueOfDecoding(t *testing.T) {
	var m Machine
	m.registers[3] = 99
	assert.Equal(t, word.Word(0), m.valueOf(0))
	assert.Equal(t, word.Word(32767), m.valueOf(32767))
	assert.Equal(t, word.Word(99), m.valueOf(32768+3))
	for _, v := range []uint16{32776, 32777, 40000, 65535} {
		m.flags = 0
		got := m.valueOf(v)
		assert.Equal(t, m.nullRegister, got)
		assert.True(t, m.flags.Has(FlagBadInteger))
	}
}

func TestCallReturnPairing(t *testing.T) {
	// CALL 7 at address 0 (2 words); subroutine at 7 is just RET.
	m, _ := runToCompletion(t,
		17, 7, // CALL 7
		0, // HALT (reached after RET)
		0, 0, 0, 0,
		18, // RET (address 7)
	)
	assert.True(t, m.Flags().Has(FlagHalted))
	assert.Equal(t, 2, m.IP().Int())
}

func TestInputWithoutTrailingNewlineStillDelivers(t *testing.T) {
	in := strings.NewReader("X")
	var out bytes.Buffer
	m := New(image(
		20, 32768, // IN r0
		19, 32768, // OUT r0
		0, // HALT
	), in, &out)
	require.NoError(t, m.Run())
	assert.Equal(t, "X", out.String())
	assert.True(t, m.Flags().Has(FlagHalted))
}

func TestInputExhaustedReturnsErrAndRetriesSameInstruction(t *testing.T) {
	var out bytes.Buffer
	m := New(image(20, 32768, 0), strings.NewReader(""), &out)
	ipBefore := m.IP()
	err := m.Step()
	assert.ErrorIs(t, err, ErrInputExhausted)
	assert.Equal(t, ipBefore, m.IP())
}

func TestPauseRequestSuspendsBetweenInstructions(t *testing.T) {
	var out bytes.Buffer
	m := New(image(19, 65, 19, 66, 0), strings.NewReader(""), &out)
	m.RequestPause()
	require.NoError(t, m.Run())
	assert.Equal(t, Paused, m.State())
	assert.Equal(t, "", out.String())

	require.NoError(t, m.Run())
	assert.Equal(t, Terminated, m.State())
	assert.Equal(t, "AB", out.String())
}
