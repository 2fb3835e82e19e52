package browser

import (
	"fmt"
	"testing"

	"github.com/abrezinsky/swishfeed/internal/errors"
)

// mockCommander records command executions for testing
type mockCommander struct {
	lastCommand string
	lastArgs    []string
	calls       int
	startError  error
}

func (m *mockCommander) Start(name string, args ...string) error {
	m.calls++
	m.lastCommand = name
	m.lastArgs = args
	return m.startError
}

func TestOpen_Platforms(t *testing.T) {
	const feedURL = "http://192.168.1.20:8000/"

	tests := []struct {
		goos    string
		command string
		args    []string
	}{
		{"linux", "xdg-open", []string{feedURL}},
		{"freebsd", "xdg-open", []string{feedURL}},
		{"darwin", "open", []string{feedURL}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", feedURL}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			mock := &mockCommander{}
			if err := NewWithCommander(mock, tt.goos).Open(feedURL); err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if mock.lastCommand != tt.command {
				t.Errorf("expected command %q, got %q", tt.command, mock.lastCommand)
			}
			if fmt.Sprint(mock.lastArgs) != fmt.Sprint(tt.args) {
				t.Errorf("expected args %v, got %v", tt.args, mock.lastArgs)
			}
		})
	}
}

func TestOpen_UnsupportedPlatform(t *testing.T) {
	mock := &mockCommander{}
	err := NewWithCommander(mock, "plan9").Open("http://localhost:8000/")

	if !errors.IsKind(err, errors.ErrInvalidInput) {
		t.Errorf("expected invalid input error, got %v", err)
	}
	if mock.calls != 0 {
		t.Error("expected no command to run")
	}
}

func TestOpen_RejectsNonWebURLs(t *testing.T) {
	for _, raw := range []string{"", "file:///etc/passwd", "javascript:alert(1)", "http://", "::bad"} {
		t.Run(raw, func(t *testing.T) {
			mock := &mockCommander{}
			err := NewWithCommander(mock, "linux").Open(raw)
			if !errors.IsKind(err, errors.ErrInvalidInput) {
				t.Errorf("expected invalid input error, got %v", err)
			}
			if mock.calls != 0 {
				t.Error("expected no command to run")
			}
		})
	}
}

func TestOpen_CommandError(t *testing.T) {
	mock := &mockCommander{startError: fmt.Errorf("xdg-open: not found")}
	err := NewWithCommander(mock, "linux").Open("https://feed.example.com/")

	if !errors.IsKind(err, errors.ErrUnavailable) {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestNew_UsesRealCommander(t *testing.T) {
	o := New()
	if _, ok := o.commander.(RealCommander); !ok {
		t.Errorf("expected RealCommander, got %T", o.commander)
	}
	if o.goos == "" {
		t.Error("expected goos to be set")
	}
}
