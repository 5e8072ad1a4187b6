//go:build unix

package terminal

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// querySize returns the window size of the terminal on fd
func querySize(fd uintptr) (int, int, error) {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrGeometryUnavailable, err)
	}
	return int(ws.Col), int(ws.Row), nil
}

// enableVirtualTerminal is a no-op: unix terminals interpret ANSI natively
func enableVirtualTerminal(uintptr) error {
	return nil
}
