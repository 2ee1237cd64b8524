//go:build windows

package config

import (
	"os"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

// EnableColorOutput checks if colorized output is possible and was not
// disabled with NO_COLOR. Windows console has to be switched into VT100 mode
// for escape sequences to work.
func EnableColorOutput(stream *os.File) bool {
	if _, off := os.LookupEnv("NO_COLOR"); off {
		return false
	}
	if !term.IsTerminal(int(stream.Fd())) {
		return false
	}

	h := windows.Handle(stream.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	// consoles older than Windows 10 refuse this mode
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
