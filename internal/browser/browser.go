// Package browser opens the feed page in the desktop browser.
package browser

import (
	"net/url"
	"os/exec"
	"runtime"

	"github.com/abrezinsky/swishfeed/internal/errors"
)

// Commander is an interface for executing commands (for testing)
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander executes actual commands
type RealCommander struct{}

// Start starts the command without waiting for it
func (RealCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Opener launches the platform URL handler
type Opener struct {
	commander Commander
	goos      string
}

// New returns an Opener for the running platform
func New() *Opener {
	return &Opener{commander: RealCommander{}, goos: runtime.GOOS}
}

// NewWithCommander returns an Opener for goos that runs commands through c
func NewWithCommander(c Commander, goos string) *Opener {
	return &Opener{commander: c, goos: goos}
}

// Open opens rawURL, which must be an absolute http or https URL
func (o *Opener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.InvalidInputf("not a web url: %q", rawURL)
	}

	var name string
	var args []string

	switch o.goos {
	case "linux", "freebsd", "openbsd":
		name = "xdg-open"
		args = []string{u.String()}
	case "darwin":
		name = "open"
		args = []string{u.String()}
	case "windows":
		name = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", u.String()}
	default:
		return errors.InvalidInputf("unsupported platform: %s", o.goos)
	}

	if err := o.commander.Start(name, args...); err != nil {
		return errors.Wrap(err, errors.ErrUnavailable, "failed to launch browser")
	}
	return nil
}
