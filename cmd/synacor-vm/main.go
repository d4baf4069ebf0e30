// Command synacor-vm runs a Synacor-architecture program image.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/synacor-vm/synacor/pkg/vm"
)

func main() {
	log.SetFlags(0)

	var debug bool
	var verbose bool
	var loadState string

	rootCmd := &cobra.Command{
		Use:   "synacor-vm [FLAGS...] FILENAME",
		Short: "Run a Synacor-architecture program image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], debug, verbose, loadState)
		},
	}
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "attach the trace observer from the start")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log the loaded image size and stack base, and the final ip and flags at halt")
	rootCmd.Flags().StringVar(&loadState, "load-state", "", "resume from a previously saved state dump instead of loading FILENAME fresh")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(filename string, debug, verbose bool, loadState string) error {
	image, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("synacor-vm: %w", err)
	}

	m := vm.New(image, os.Stdin, os.Stdout)

	if loadState != "" {
		sf, err := os.Open(loadState)
		if err != nil {
			return fmt.Errorf("synacor-vm: %w", err)
		}
		defer sf.Close()
		if err := m.Deserialize(sf); err != nil {
			return fmt.Errorf("synacor-vm: %w", err)
		}
	}

	if debug {
		m.Attach(vm.NewTraceObserver(os.Stderr, os.Stdin))
	}
	if verbose {
		log.Printf("synacor-vm: loaded %d bytes from %s, stack base %d", len(image), filename, m.StackBase().Int())
	}

	menu := vm.NewPauseMenu(m, os.Stdout)
	defer menu.Close()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	for {
		if err := m.Run(); err != nil {
			return fmt.Errorf("synacor-vm: %w", err)
		}
		switch m.State() {
		case vm.Terminated:
			if verbose {
				log.Printf("synacor-vm: halted at ip=%d flags=%s", m.IP().Int(), m.Flags())
			}
			return nil
		case vm.Paused:
			if !interactive {
				// Nothing sensible to prompt for without a TTY; treat a
				// pause request as a request to stop.
				return nil
			}
			action, err := menu.Run()
			if err != nil {
				return fmt.Errorf("synacor-vm: %w", err)
			}
			if action == vm.ActionExit {
				return nil
			}
			// ActionResume: loop back into m.Run().
		}
	}
}
