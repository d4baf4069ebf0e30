package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synacor-vm/synacor/pkg/word"
)

func TestNewStackBaseRoundsUpToNextEightWordBoundary(t *testing.T) {
	m := New(image(19, 65, 0), strings.NewReader(""), &bytes.Buffer{})
	assert.Equal(t, word.Address(8), m.StackBase())
	assert.Equal(t, m.StackBase(), m.StackTop())
}

func TestPushPopRoundTrip(t *testing.T) {
	var m Machine
	m.stackBase = 100
	m.stackTop = 100

	before := m.stackTop
	m.push(word.Word(42))
	assert.NotEqual(t, before, m.stackTop)
	got := m.pop()
	assert.Equal(t, word.Word(42), got)
	assert.Equal(t, before, m.stackTop)
	assert.False(t, m.flags.Has(FlagStackUnderflow))
}

func TestStackEmptyPopSetsUnderflowButStillDecrementsAndReads(t *testing.T) {
	var m Machine
	m.stackBase = 50
	m.stackTop = 50
	m.memory.cells[49] = 7

	got := m.pop()
	assert.True(t, m.flags.Has(FlagStackUnderflow))
	assert.True(t, m.flags.Has(FlagError))
	assert.Equal(t, word.Address(49), m.stackTop)
	assert.Equal(t, word.Word(7), got)
}

func TestResolveDestinationLiteralFaults(t *testing.T) {
	var m Machine
	dst := m.resolveDestination(100)
	assert.Same(t, &m.nullRegister, dst)
	assert.True(t, m.flags.Has(FlagWriteOnLiteral))
	assert.True(t, m.flags.Has(FlagError))
}

func TestResolveDestinationInvalidFaults(t *testing.T) {
	var m Machine
	dst := m.resolveDestination(40000)
	assert.Same(t, &m.nullRegister, dst)
	assert.True(t, m.flags.Has(FlagBadInteger))
	assert.True(t, m.flags.Has(FlagError))
}

func TestResolveDestinationRegister(t *testing.T) {
	var m Machine
	dst := m.resolveDestination(32768 + 5)
	assert.Same(t, &m.registers[5], dst)
}

func TestStateMachineTransitions(t *testing.T) {
	m := New(image(19, 65, 0), strings.NewReader(""), &bytes.Buffer{})
	assert.Equal(t, Running, m.State())
	require.NoError(t, m.Run())
	assert.Equal(t, Terminated, m.State())
}

func TestFlagsStringFormatting(t *testing.T) {
	assert.Equal(t, "-", Flags(0).String())
	assert.Equal(t, "HALTED", FlagHalted.String())
	assert.Equal(t, "HALTED|ERROR", (FlagHalted | FlagError).String())
}

func TestAttachTogglesByTag(t *testing.T) {
	var m Machine
	var buf bytes.Buffer
	tracer := NewTraceObserver(&buf, strings.NewReader(""))

	added := m.Attach(tracer)
	assert.True(t, added)
	assert.Len(t, m.observers, 1)

	removed := m.Attach(NewTraceObserver(&buf, strings.NewReader("")))
	assert.False(t, removed)
	assert.Len(t, m.observers, 0)
}

func TestDumpStateObserverIsSingleShot(t *testing.T) {
	m := New(image(19, 65, 19, 66, 0), strings.NewReader(""), &bytes.Buffer{})
	var dump bytes.Buffer
	m.Attach(NewDumpStateObserver(&dump))

	require.NoError(t, m.Step())
	assert.Len(t, m.observers, 0)
	assert.Equal(t, SerializedSize, dump.Len())
}
