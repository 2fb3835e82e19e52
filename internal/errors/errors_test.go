package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		kind    Kind
		message string
	}{
		{"NotFound", NotFound("shot not found"), ErrNotFound, "shot not found"},
		{"NotFoundf", NotFoundf("shot %d not found", 7), ErrNotFound, "shot 7 not found"},
		{"Validation", Validation("bad limit"), ErrValidation, "bad limit"},
		{"Validationf", Validationf("limit must be <= %d", 100), ErrValidation, "limit must be <= 100"},
		{"Conflict", Conflict("already recorded"), ErrConflict, "already recorded"},
		{"InvalidInput", InvalidInput("empty body"), ErrInvalidInput, "empty body"},
		{"InvalidInputf", InvalidInputf("bad field %q", "ts"), ErrInvalidInput, `bad field "ts"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, tt.err.Kind)
			}
			if tt.err.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, tt.err.Message)
			}
			if tt.err.Err != nil {
				t.Errorf("expected no wrapped error, got %v", tt.err.Err)
			}
			if tt.err.Error() != tt.message {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.message)
			}
		})
	}
}

func TestInternal_WrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)

	if err.Kind != ErrInternal {
		t.Errorf("expected internal kind, got %v", err.Kind)
	}
	if err.Error() != "internal error: disk full" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestUnavailable_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("fetch shots", cause)

	if err.Kind != ErrUnavailable {
		t.Errorf("expected unavailable kind, got %v", err.Kind)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("no rows")
	err := Wrap(cause, ErrNotFound, "shot lookup")

	if err.Error() != "shot lookup: no rows" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if errors.Unwrap(err) != cause {
		t.Error("expected Unwrap to return the cause")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", NotFound("x"), ErrNotFound},
		{"wrapped by fmt", fmt.Errorf("outer: %w", Validation("x")), ErrValidation},
		{"plain error", errors.New("x"), ErrInternal},
		{"nil", nil, ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("handler: %w", Conflict("dup"))
	if !IsKind(err, ErrConflict) {
		t.Error("expected conflict kind to be found")
	}
	if IsKind(err, ErrNotFound) {
		t.Error("did not expect not-found kind")
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		ErrInternal:     "internal",
		ErrNotFound:     "not_found",
		ErrValidation:   "validation",
		ErrConflict:     "conflict",
		ErrInvalidInput: "invalid_input",
		ErrUnavailable:  "unavailable",
		Kind(99):        "internal",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
