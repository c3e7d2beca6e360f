package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

var restoreHook atomic.Pointer[func()]

// SetRestoreHook registers the function that returns the terminal to a sane state on crash
// The TUI owns the terminal, so the hook is installed once the screen is initialized
func SetRestoreHook(fn func()) {
	if fn == nil {
		restoreHook.Store(nil)
		return
	}
	restoreHook.Store(&fn)
}

// HandleCrash is the unified panic handler that restores the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	if hook := restoreHook.Load(); hook != nil {
		(*hook)()
	}

	os.Stdout.Sync()
	os.Stderr.Sync()

	// \r\n keeps the trace readable if the terminal is still in raw mode
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mVIBE-BEAT CRASHED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())

	os.Stderr.Sync()
	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash.
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
