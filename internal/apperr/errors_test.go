package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{New(CodeConfig, "API key is not set"), http.StatusInternalServerError},
		{New(CodeUnavailable, "sheet unavailable"), http.StatusServiceUnavailable},
		{New(CodeValidation, "address is required"), http.StatusBadRequest},
		{New(CodeNotFound, "no key"), http.StatusNotFound},
		{New(CodeUnauthorized, "session expired"), http.StatusUnauthorized},
		{WithStatus(CodeUpstream, http.StatusForbidden, "forbidden"), http.StatusForbidden},
		{fmt.Errorf("grants: %w", New(CodeUnavailable, "down")), http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.err); got != tc.want {
			t.Errorf("StatusOf(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestHasCodeWalksChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("fetch: %w", Wrap(CodeUpstream, "sheet values", cause))
	if !HasCode(err, CodeUpstream) {
		t.Fatal("expected upstream code in chain")
	}
	if HasCode(err, CodeConfig) {
		t.Fatal("did not expect config code in chain")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to stay reachable")
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(fmt.Errorf("x: %w", New(CodeConfig, "Sheet ID is not set"))); got != "Sheet ID is not set" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := MessageOf(Wrap(CodeUpstream, "", errors.New("boom"))); got != "boom" {
		t.Fatalf("expected cause message, got %q", got)
	}
}
