package tui

import (
	"io"
	"os"
	"runtime"
	"strings"
)

// OutputMode describes how an install reports progress.
type OutputMode int

const (
	// ModeTUI drives the live bubbletea download display.
	ModeTUI OutputMode = iota
	// ModePlain prints a result line once the install finishes, with no
	// live display. Used for pipes, dumb terminals and --no-progress.
	ModePlain
	// ModeJSON emits a machine-readable result document.
	ModeJSON
)

// DetectMode picks the output mode for the given writer. The live display
// only engages on a real character device with a usable TERM.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	if jsonOutput {
		return ModeJSON
	}
	if noProgress {
		return ModePlain
	}
	file, ok := out.(*os.File)
	if !ok {
		return ModePlain
	}
	info, err := file.Stat()
	if err != nil {
		return ModePlain
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		return ModePlain
	}
	if runtime.GOOS != "windows" {
		term := os.Getenv("TERM")
		if term == "" || strings.EqualFold(term, "dumb") {
			return ModePlain
		}
	}
	return ModeTUI
}
