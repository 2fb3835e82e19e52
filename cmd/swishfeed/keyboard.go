package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/abrezinsky/swishfeed/internal/logger"
)

// urlOpener opens a URL in the desktop browser
type urlOpener interface {
	Open(url string) error
}

// keyActions performs the serve command's keyboard shortcuts
type keyActions struct {
	out     io.Writer
	log     logger.Logger
	feedURL string
	opener  urlOpener
	quit    func()
}

// handle runs the action bound to key and reports whether it asked to quit
func (k *keyActions) handle(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "o":
		fmt.Fprintf(k.out, "%sOpening feed in browser...%s\n", cyan, reset)
		if err := k.opener.Open(k.feedURL); err != nil {
			fmt.Fprintf(k.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "h":
		if k.log.IsHTTPLoggingEnabled() {
			k.log.DisableHTTPLogging()
			fmt.Fprintf(k.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			k.log.EnableHTTPLogging()
			fmt.Fprintf(k.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		next := logger.NextLevel(k.log.GetLevel())
		k.log.SetLevel(next)
		fmt.Fprintf(k.out, "%sLog level: %s%s%s\n", green, yellow, next, reset)
	case "q", "\x03":
		fmt.Fprintf(k.out, "%sShutting down server...%s\n", yellow, reset)
		k.quit()
		return true
	case "?":
		printKeyboardHelp(k.out)
	}
	return false
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp(w io.Writer) {
	fmt.Fprintf(w, "\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(w, "    %so%s      - Open the feed in a browser\n", cyan, reset)
	fmt.Fprintf(w, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(w, "    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Fprintf(w, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(w, "    %s?%s      - Show this help\n\n", cyan, reset)
}

// readKeys delivers bytes from r to k until r fails, ctx is done or a key
// asks to quit.
func readKeys(done <-chan struct{}, r io.Reader, k *keyActions) {
	keys := make(chan byte)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if err != nil {
				close(keys)
				return
			}
			if n == 0 {
				continue
			}
			select {
			case keys <- buf[0]:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case key, ok := <-keys:
			if !ok || k.handle(key) {
				return
			}
		}
	}
}
