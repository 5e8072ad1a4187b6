// Package terminal provides the output surface for rendered frames.
//
// Backends:
//   - ansi: direct escape sequences on stdout, size via TIOCGWINSZ (unix),
//     console buffer info (windows) or x/term elsewhere
//   - tcell: a tcell screen, which owns the tty in raw mode and therefore
//     reports interrupt keys itself
//   - termbox: termbox-go in grayscale mode, same input handling as tcell
//
// A size query that fails never stops rendering: the configured default
// geometry (80x24) is substituted and the failure is logged once.
package terminal
