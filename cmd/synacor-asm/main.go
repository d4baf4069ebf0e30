// Command synacor-asm assembles Synacor-architecture source text into
// a program image.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/synacor-vm/synacor/pkg/asm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "synacor-asm INPUT [OUTPUT]",
		Short: "Assemble Synacor-architecture source into a program image",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output := ""
			if len(args) == 2 {
				output = args[1]
			}
			return assembleFile(input, output)
		},
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// assembleFile assembles input, writing to output (or a path derived
// from input if output is empty), and returns a non-nil error on any
// diagnostic or filesystem failure — the exit code contract of §6's
// "Assembler CLI".
func assembleFile(input, output string) error {
	fp, err := os.Open(input)
	if err != nil {
		return err
	}
	defer fp.Close()

	data, diags := asm.Assemble(input, fp)
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprint(os.Stderr, d.Format())
		}
		return fmt.Errorf("synacor-asm: %d diagnostic(s), no output written", len(diags))
	}

	if output == "" {
		output = deriveOutputPath(input)
	}
	return atomicWriteFile(output, data)
}

// deriveOutputPath replaces input's final extension with "bin", or
// appends ".bin" if it has none, or appends "_" if that would collide
// with the input path itself (§6). An existing file at the derived
// path is replaced.
func deriveOutputPath(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	candidate := base + ".bin"
	if candidate == input {
		candidate += "_"
	}
	return candidate
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// atomicWriteFile builds data into a temporary file and, on success,
// renames it into place at path — preserving any prior file at path
// under a second temporary name until the rename of the new file
// succeeds, so a crash mid-write never leaves a half-written output or
// loses the previous one (§4.9's failure policy).
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".synacor-asm-tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	var backupName string
	if fileExists(path) {
		backupName = path + ".bak"
		if err := os.Rename(path, backupName); err != nil {
			return err
		}
	}

	if err := os.Rename(tmpName, path); err != nil {
		// restore the previous output so a failed assembly never
		// destroys a working image.
		if backupName != "" {
			os.Rename(backupName, path)
		}
		return err
	}
	if backupName != "" {
		os.Remove(backupName)
	}
	return nil
}
