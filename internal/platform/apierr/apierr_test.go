package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromFindsErrorInChain(t *testing.T) {
	cause := errors.New("student has no academic data")
	apiErr := New(http.StatusNotFound, "NO_ACADEMIC_DATA", cause)
	wrapped := fmt.Errorf("recalculate: %w", apiErr)

	found, ok := From(wrapped)
	if !ok {
		t.Fatal("From did not find the error in the chain")
	}
	if found.Status != http.StatusNotFound || found.Code != "NO_ACADEMIC_DATA" {
		t.Errorf("found = %d/%s", found.Status, found.Code)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("wrapping lost the underlying cause")
	}

	if _, ok := From(errors.New("plain failure")); ok {
		t.Error("From matched a plain error")
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		want string
	}{
		{"cause wins", New(400, "INVALID_BODY", errors.New("bad json")), "bad json"},
		{"code without cause", &Error{Status: 404, Code: "JOB_NOT_FOUND"}, "JOB_NOT_FOUND"},
		{"status only", &Error{Status: 500}, "api error (500)"},
		{"empty", &Error{}, "api error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}
