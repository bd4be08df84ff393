package util

import (
	"errors"
	"strings"
	"testing"
)

func TestAPIErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{NewCommandFailed("POST", "/x", 400, "bad"), ErrCommandFailed},
		{NewCreateFailed("/x", 409, "exists"), ErrCreateFailed},
		{NewUpdateFailed("/x", 412, "stale"), ErrUpdateFailed},
		{NewFetchFailed("/x", 500, "boom"), ErrFetchFailed},
		{NewDeleteFailed("/x", 409, "referenced"), ErrDeleteFailed},
		{NewConnectionError("GET", "/x", 0, "refused"), ErrConnection},
	}
	for _, c := range cases {
		if !errors.Is(c.err, c.kind) {
			t.Errorf("%v should match %v", c.err, c.kind)
		}
		var apiErr *APIError
		if !errors.As(c.err, &apiErr) {
			t.Errorf("%v should expose *APIError", c.err)
		}
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := NewUpdateFailed("/elements/fw/1", 412, "etag mismatch")
	msg := err.Error()
	for _, want := range []string{"PUT", "/elements/fw/1", "412", "etag mismatch"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}

	// status 0 means the request never reached the server
	conn := NewConnectionError("GET", "/x", 0, "refused")
	if strings.Contains(conn.Error(), "status") {
		t.Errorf("no status should be printed for %q", conn.Error())
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("interface", "42")
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("not found errors must match ErrNotFound")
	}
	if !strings.Contains(err.Error(), "interface 42") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestAmbiguousConfigError(t *testing.T) {
	err := NewAmbiguousConfigError("change cluster ip address", "interface 1 has vlans")
	if !errors.Is(err, ErrAmbiguousConfig) {
		t.Fatal("must match ErrAmbiguousConfig")
	}
}
