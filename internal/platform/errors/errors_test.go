package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeInvalidLineReference, "line 9 is out of range")
	if !stderrors.Is(err, New(CodeInvalidLineReference, "other")) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(err, New(CodeInvalidCardReference, "line 9 is out of range")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeUnknown, "save game", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("execute: %w", New(CodeMissingRoleHolder, "no director"))
	if got := CodeOf(wrapped); got != CodeMissingRoleHolder {
		t.Fatalf("expected %s, got %s", CodeMissingRoleHolder, got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("expected unknown code, got %s", got)
	}
	if _, ok := As(fmt.Errorf("plain")); ok {
		t.Fatal("expected no domain error in plain chain")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidCommand, http.StatusBadRequest},
		{CodeInvalidArgumentCount, http.StatusBadRequest},
		{CodeMissingRoleHolder, http.StatusConflict},
		{CodeTurnPreconditionViolated, http.StatusConflict},
		{CodeUnauthorizedRole, http.StatusForbidden},
		{CodeUnimplementedProtocol, http.StatusNotImplemented},
		{CodeGameNotFound, http.StatusNotFound},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.code, tt.want, got)
		}
	}
}
