package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/synacor-vm/synacor/pkg/word"
)

// ObserverTag identifies an observer's kind for the attach/toggle
// protocol (§9's design note): attaching a tag already present detaches
// the existing observer instead of stacking a second copy.
type ObserverTag string

// Observer is a callable invoked between instructions (§4.8). It may
// inspect or mutate the machine and, by returning remove == true,
// request its own detachment — used by DumpState to make itself
// single-shot.
type Observer interface {
	Tag() ObserverTag
	Observe(m *Machine, instrAddr word.Address) (remove bool)
}

// Attach toggles obs: if an observer with the same Tag is already
// attached it is detached and Attach returns false; otherwise obs is
// appended and Attach returns true. This is the mechanism behind the
// pause menu's "debug toggles the trace observer" command (§4.10).
func (m *Machine) Attach(obs Observer) bool {
	for i, existing := range m.observers {
		if existing.Tag() == obs.Tag() {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return false
		}
	}
	m.observers = append(m.observers, obs)
	return true
}

// Detach removes any observer currently attached under tag.
func (m *Machine) Detach(tag ObserverTag) {
	for i, existing := range m.observers {
		if existing.Tag() == tag {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

// runObservers fans the just-executed instruction out to every
// attached observer, in registration order, detaching any that ask to
// be removed.
func (m *Machine) runObservers(instrAddr word.Address) {
	if len(m.observers) == 0 {
		return
	}
	kept := m.observers[:0]
	for _, obs := range m.observers {
		if !obs.Observe(m, instrAddr) {
			kept = append(kept, obs)
		}
	}
	m.observers = kept
}

// DumpStateObserver writes the full serialized machine state to w
// after the next instruction, then detaches itself (§4.8: "single-shot,
// returns detach"). It is the observer behind the pause menu's "save"
// command.
type DumpStateObserver struct {
	w   io.Writer
	err error
}

// NewDumpStateObserver wraps w. The result of the write is recorded on
// the struct and returned by Err; the pause menu does not read it.
func NewDumpStateObserver(w io.Writer) *DumpStateObserver {
	return &DumpStateObserver{w: w}
}

func (d *DumpStateObserver) Tag() ObserverTag { return "dump-state" }

func (d *DumpStateObserver) Observe(m *Machine, _ word.Address) (remove bool) {
	d.err = m.Serialize(d.w)
	return true
}

// Err returns the result of the one write this observer ever performs.
// Valid only after Observe has run once.
func (d *DumpStateObserver) Err() error { return d.err }

// TraceObserver renders a go-spew dump of the machine's non-memory
// state plus a memory window around ip after every instruction, then
// blocks reading one line from the host as a step/pause gate (§4.8).
// It is deliberately more expensive than a DumpStateObserver snapshot
// and is meant for interactive debugging (§4.10's "debug" pause
// command), not for long unattended runs; the pause menu
// attaches/detaches it by toggling on its Tag.
//
// The gate recognizes: a blank line (single step), "run"/"r"/
// "c"/"continue" (free-run until the next breakpoint), "~" (request a
// pause, same sentinel as §4.6's input redirection), and "b <address>"
// (toggle a breakpoint at that address without consuming a step).
type TraceObserver struct {
	w    io.Writer
	in   *bufio.Reader
	conf spew.ConfigState

	running     bool
	breakpoints map[word.Address]bool
}

// NewTraceObserver wraps w (trace output) and in (the host's step/
// pause gate) with a spew.ConfigState tuned for compact, single-line-
// per-field machine snapshots (no pointer addresses, which are
// meaningless across runs and would make traces hard to diff).
func NewTraceObserver(w io.Writer, in io.Reader) *TraceObserver {
	return &TraceObserver{
		w:           w,
		in:          bufio.NewReader(in),
		breakpoints: make(map[word.Address]bool),
		conf: spew.ConfigState{
			Indent:                  "  ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		},
	}
}

func (t *TraceObserver) Tag() ObserverTag { return "trace" }

func (t *TraceObserver) Observe(m *Machine, instrAddr word.Address) (remove bool) {
	t.printSnapshot(m, instrAddr)

	if t.running && !t.breakpoints[m.IP()] {
		return false
	}
	t.running = false

	for {
		fmt.Fprint(t.w, "trace> ")
		line, err := t.in.ReadString('\n')
		cmd := strings.TrimSpace(line)
		if err != nil && cmd == "" {
			// host input closed; stop gating rather than spin forever.
			t.running = true
			return false
		}

		switch {
		case cmd == "":
			return false
		case cmd == "~":
			m.RequestPause()
			return false
		case cmd == "run" || cmd == "r" || cmd == "c" || cmd == "continue":
			t.running = true
			return false
		case strings.HasPrefix(cmd, "b "):
			t.toggleBreakpoint(strings.TrimSpace(cmd[2:]))
		default:
			fmt.Fprintln(t.w, "commands: <enter> step, run/continue, b <address>, ~ pause")
		}
	}
}

func (t *TraceObserver) toggleBreakpoint(arg string) {
	addr, err := strconv.Atoi(arg)
	if err != nil || addr < 0 || addr > word.MaxAddress.Int() {
		fmt.Fprintf(t.w, "not an address: %q\n", arg)
		return
	}
	a := word.Address(addr)
	if t.breakpoints[a] {
		delete(t.breakpoints, a)
		fmt.Fprintf(t.w, "breakpoint cleared at %05d\n", addr)
	} else {
		t.breakpoints[a] = true
		fmt.Fprintf(t.w, "breakpoint set at %05d\n", addr)
	}
}

func (t *TraceObserver) printSnapshot(m *Machine, instrAddr word.Address) {
	snapshot := struct {
		Addr      word.Address
		Opcode    Opcode
		Flags     Flags
		IP        word.Address
		Registers [NumRegisters]word.Word
		StackBase word.Address
		StackTop  word.Address
		State     State
	}{
		Addr:      instrAddr,
		Opcode:    Opcode(m.memory.cells[instrAddr]),
		Flags:     m.Flags(),
		IP:        m.IP(),
		Registers: m.Registers(),
		StackBase: m.StackBase(),
		StackTop:  m.StackTop(),
		State:     m.State(),
	}
	t.conf.Fdump(t.w, snapshot)
	fmt.Fprintf(t.w, "mem around ip: %s\n", t.memoryWindow(m, m.IP()))
	fmt.Fprintf(t.w, "output so far: %q\n", m.out.Captured())
}

// memoryWindow renders the handful of cells surrounding center, clipped
// to the memory's bounds, for the "memory around ip" the pause/trace
// commentary of §4.8 calls for.
func (t *TraceObserver) memoryWindow(m *Machine, center word.Address) string {
	const radius = 4
	lo := center.Int() - radius
	if lo < 0 {
		lo = 0
	}
	hi := center.Int() + radius
	if hi > word.MaxAddress.Int() {
		hi = word.MaxAddress.Int()
	}

	var b strings.Builder
	for a := lo; a <= hi; a++ {
		if a == center.Int() {
			fmt.Fprintf(&b, "[%05d]=%05d ", a, m.memory.cells[a])
		} else {
			fmt.Fprintf(&b, "%05d=%05d ", a, m.memory.cells[a])
		}
	}
	return strings.TrimSpace(b.String())
}
