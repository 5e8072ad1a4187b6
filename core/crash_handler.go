package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

// Finisher restores whatever the process changed on the terminal
type Finisher interface {
	Fini()
}

var crashTerminal atomic.Pointer[Finisher]

// SetCrashTerminal registers the surface restored before a crash report is printed
func SetCrashTerminal(f Finisher) {
	if f == nil {
		crashTerminal.Store(nil)
		return
	}
	crashTerminal.Store(&f)
}

var crashReset atomic.Pointer[func()]

// SetCrashReset registers a last-resort terminal reset run after the surface Fini
// It also covers panics before a surface is registered and panics inside Fini
func SetCrashReset(fn func()) {
	if fn == nil {
		crashReset.Store(nil)
		return
	}
	crashReset.Store(&fn)
}

// exit is replaced in tests
var (
	osExit = os.Exit
	exit   = osExit
)

// HandleCrash restores the terminal, prints the panic with its stack trace and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	if f := crashTerminal.Load(); f != nil {
		finiSurface(*f)
	}
	if fn := crashReset.Load(); fn != nil {
		(*fn)()
	}

	os.Stdout.Sync()
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mDONUT CRASHED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	os.Stderr.Sync()

	exit(1)
}

// finiSurface swallows a second panic so the reset and report still run
func finiSurface(f Finisher) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\r\nterminal restore failed: %v\r\n", r)
		}
	}()
	f.Fini()
}

// Go runs fn in a new goroutine with panic recovery
// Use this instead of the 'go' keyword so a crash never leaves the terminal dirty
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
