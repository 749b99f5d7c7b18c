package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("Name and color are required"), http.StatusBadRequest},
		{"not found", NotFound("Category not found"), http.StatusNotFound},
		{"conflict", Conflict("Category with this name already exists"), http.StatusConflict},
		{"persistence", Persistence("Failed to create task", errors.New("disk full")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("create: %w", NotFound("Task not found")), http.StatusNotFound},
		{"foreign", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindForStatusRoundTrip(t *testing.T) {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict} {
		e := &Error{Kind: kind, Message: "x"}
		if got := KindForStatus(Status(e)); got != kind {
			t.Errorf("KindForStatus(Status(%v)) = %v", kind, got)
		}
	}
	if KindForStatus(http.StatusBadGateway) != ErrPersistence {
		t.Error("unexpected kind for 502")
	}
}

func TestMessageHidesCause(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: categories.name")
	err := Persistence("Failed to create category", cause)

	if got := Message(err, "fallback"); got != "Failed to create category" {
		t.Errorf("Message() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("cause should stay reachable through Unwrap")
	}
	if got := Message(errors.New("raw"), "fallback"); got != "fallback" {
		t.Errorf("Message() = %q, want fallback", got)
	}
}
