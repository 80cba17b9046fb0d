package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("gone"), http.StatusNotFound},
		{BadRequest("nope"), http.StatusBadRequest},
		{Forbidden("denied"), http.StatusForbidden},
		{Internal("boom", errors.New("root")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("context: %w", NotFound("missing"))
	if KindOf(err) != KindNotFound {
		t.Errorf("kind lost through wrapping: %v", KindOf(err))
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("save failed", cause)
	if !errors.Is(err, cause) {
		t.Error("cause not reachable via errors.Is")
	}
	if Message(err) != "save failed" {
		t.Errorf("message = %q", Message(err))
	}
}
