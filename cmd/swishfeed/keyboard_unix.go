//go:build linux || darwin || freebsd || netbsd || openbsd

package main

import (
	"context"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// listenForKeyboard switches stdin to unbuffered, unechoed input and runs
// shortcuts until ctx is done. Output processing stays on so "\n" still
// returns the carriage.
func listenForKeyboard(ctx context.Context, k *keyActions) bool {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return false
	}

	oldState, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return false
	}

	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &newState); err != nil {
		return false
	}

	go func() {
		defer unix.IoctlSetTermios(fd, ioctlSetTermios, oldState)
		readKeys(ctx.Done(), os.Stdin, k)
	}()
	return true
}
