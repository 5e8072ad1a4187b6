//go:build windows

package terminal

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// querySize returns the visible window of the console screen buffer
func querySize(fd uintptr) (int, int, error) {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(windows.Handle(fd), &info); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrGeometryUnavailable, err)
	}
	w := int(info.Window.Right-info.Window.Left) + 1
	h := int(info.Window.Bottom-info.Window.Top) + 1
	return w, h, nil
}

// enableVirtualTerminal turns on ANSI escape processing for the console
func enableVirtualTerminal(fd uintptr) error {
	h := windows.Handle(fd)
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return err
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}
