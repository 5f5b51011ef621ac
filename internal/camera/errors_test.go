package camera

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindNone},
		{name: "not found", err: NotFoundError("GoPro"), want: KindNotFound},
		{name: "connect", err: fmt.Errorf("%w: boom", ErrConnectFailed), want: KindConnectFailed},
		{name: "incomplete", err: &IncompleteCapabilitiesError{Missing: []Capability{CapAPState}}, want: KindIncompleteCapabilities},
		{name: "ap timeout", err: fmt.Errorf("stage: %w", ErrAPTimeout), want: KindAPTimeout},
		{name: "http", err: &HTTPError{StatusCode: 500}, want: KindHTTPError},
		{name: "canceled", err: fmt.Errorf("sleep: %w", context.Canceled), want: KindCanceled},
		{name: "other", err: errors.New("mystery"), want: KindOther},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Fatalf("expected kind %q, got %q", tc.want, got)
			}
		})
	}
}

func TestIncompleteCapabilitiesErrorNamesMissing(t *testing.T) {
	err := &IncompleteCapabilitiesError{Missing: []Capability{CapPassword, CapAPState}}
	if !errors.Is(err, ErrIncompleteCapabilities) {
		t.Fatalf("expected ErrIncompleteCapabilities in chain")
	}
	msg := err.Error()
	if !strings.Contains(msg, "password") || !strings.Contains(msg, "ap_state") {
		t.Fatalf("expected missing names in message, got %q", msg)
	}
}

func TestHTTPErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := &HTTPError{StatusCode: 0, Err: cause}
	if !errors.Is(err, ErrHTTP) || !errors.Is(err, cause) {
		t.Fatalf("expected both ErrHTTP and cause in chain, got %v", err)
	}

	var httpErr *HTTPError
	if !errors.As(fmt.Errorf("apply: %w", err), &httpErr) || httpErr.StatusCode != 0 {
		t.Fatalf("expected *HTTPError with status 0")
	}
}
