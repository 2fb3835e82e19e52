//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package main

import (
	"context"
	"os"

	"golang.org/x/term"
)

// listenForKeyboard reads line-buffered input; each key takes effect after Enter.
func listenForKeyboard(ctx context.Context, k *keyActions) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	go readKeys(ctx.Done(), os.Stdin, k)
	return true
}
