package vm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// PauseAction is what the caller (the engine CLI) should do once the
// pause menu returns control.
type PauseAction int

const (
	// ActionResume means the menu was left via "resume"; the caller
	// should call Machine.Run again.
	ActionResume PauseAction = iota
	// ActionExit means the menu was left via "exit", "halt" or
	// end-of-input; the caller should tear down and quit. Only "halt"
	// sets HALTED on the machine.
	ActionExit
)

// DumpPath is the conventional filename for a state dump written by
// the pause menu's "save" command (§6).
const DumpPath = "synacor_vm_dump.dmp"

// PauseMenu implements the command set named in §4.10: debug, exit,
// halt, help, resume, save, state. It is a collaborator, not part of
// the machine itself — the machine only exposes the pause flag and
// the observer/serialization primitives the menu drives.
type PauseMenu struct {
	m        *Machine
	out      io.Writer
	line     *liner.State
	openDump func() (io.WriteCloser, error)
}

// NewPauseMenu constructs a menu over m, printing prompts and output
// to out and reading commands via a liner.State (history + line
// editing) wrapping stdin.
func NewPauseMenu(m *Machine, out io.Writer) *PauseMenu {
	return &PauseMenu{
		m:    m,
		out:  out,
		line: liner.NewLiner(),
		openDump: func() (io.WriteCloser, error) {
			return os.Create(DumpPath)
		},
	}
}

// Close releases the underlying line editor.
func (p *PauseMenu) Close() error { return p.line.Close() }

// Run prompts for and dispatches commands until the menu is left via
// "resume", "exit", "halt" (which first sets HALTED|INTERRUPT), or
// end-of-input. "save", "debug", "state" and "help" are handled in
// place and the loop continues.
func (p *PauseMenu) Run() (PauseAction, error) {
	for {
		cmd, err := p.line.Prompt("synacor> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return ActionExit, nil
			}
			return ActionExit, fmt.Errorf("vm: pause menu: %w", err)
		}
		p.line.AppendHistory(cmd)

		switch strings.TrimSpace(cmd) {
		case "debug":
			p.toggleDebug()
		case "exit":
			return ActionExit, nil
		case "halt":
			p.m.flags = p.m.flags.Set(FlagHalted | FlagInterrupt)
			return ActionExit, nil
		case "help":
			p.printHelp()
		case "resume":
			return ActionResume, nil
		case "save":
			if err := p.save(); err != nil {
				fmt.Fprintf(p.out, "save failed: %v\n", err)
			}
		case "state":
			p.printState()
		case "":
			// ignore blank lines
		default:
			fmt.Fprintf(p.out, "unrecognized command %q; type help\n", cmd)
		}
	}
}

func (p *PauseMenu) toggleDebug() {
	on := p.m.Attach(NewTraceObserver(p.out, os.Stdin))
	if on {
		fmt.Fprintln(p.out, "trace observer attached")
	} else {
		fmt.Fprintln(p.out, "trace observer detached")
	}
}

func (p *PauseMenu) save() error {
	f, err := p.openDump()
	if err != nil {
		return err
	}
	// The file stays open for the observer, which writes to it after
	// the next instruction; the menu does not close it.
	p.m.Attach(NewDumpStateObserver(f))
	fmt.Fprintf(p.out, "state will be written to %s after the next instruction\n", DumpPath)
	return nil
}

func (p *PauseMenu) printState() {
	fmt.Fprintf(p.out, "ip=%05d flags=%s state=%s regs=%v stack=[%d,%d)\n",
		p.m.IP().Int(), p.m.Flags(), p.m.State(), p.m.Registers(),
		p.m.StackBase().Int(), p.m.StackTop().Int())
}

func (p *PauseMenu) printHelp() {
	fmt.Fprintln(p.out, "commands: debug, exit, halt, help, resume, save, state")
}
