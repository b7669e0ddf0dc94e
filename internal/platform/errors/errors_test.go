package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeNoActiveScene, "no active scene")
	wrapped := fmt.Errorf("log event: %w", New(CodeNoActiveScene, "different message"))

	if !errors.Is(wrapped, sentinel) {
		t.Fatal("expected errors with the same code to match")
	}
	if errors.Is(wrapped, New(CodeNotFound, "no active scene")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeStorageFailure, "save session", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped error to match cause, got %v", err)
	}
	if err.Error() != "save session" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "save session")
	}
}

func TestWithMetadata(t *testing.T) {
	err := WithMetadata(CodeInvalidNotation, "bad notation", map[string]string{"notation": "d0"})
	if err.Metadata["notation"] != "d0" {
		t.Fatalf("metadata notation = %q, want %q", err.Metadata["notation"], "d0")
	}
}
