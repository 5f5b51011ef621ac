package camera

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound               = errors.New("target device not found")
	ErrConnectFailed          = errors.New("short-range connect failed")
	ErrIncompleteCapabilities = errors.New("required control characteristics missing")
	ErrLinkClosed             = errors.New("link is disconnected")
	ErrReadError              = errors.New("characteristic read failed")
	ErrWriteError             = errors.New("characteristic write failed")
	ErrAPTimeout              = errors.New("access point did not become ready")
	ErrIncompleteCredentials  = errors.New("credentials are incomplete")
	ErrJoinFailed             = errors.New("network join could not be started")
	ErrJoinTimeout            = errors.New("network association timed out")
	ErrHTTP                   = errors.New("time-set request failed")
	ErrTimeSource             = errors.New("time source unavailable")
)

// Kind is a stable tag for an error class, used in outcomes and log lines.
type Kind string

const (
	KindNone                   Kind = ""
	KindNotFound               Kind = "not_found"
	KindConnectFailed          Kind = "connect_failed"
	KindIncompleteCapabilities Kind = "incomplete_capabilities"
	KindLinkClosed             Kind = "link_closed"
	KindReadError              Kind = "read_error"
	KindWriteError             Kind = "write_error"
	KindAPTimeout              Kind = "ap_timeout"
	KindIncompleteCredentials  Kind = "incomplete_credentials"
	KindJoinFailed             Kind = "join_failed"
	KindJoinTimeout            Kind = "join_timeout"
	KindHTTPError              Kind = "http_error"
	KindTimeSource             Kind = "time_source"
	KindCanceled               Kind = "canceled"
	KindOther                  Kind = "other"
)

var kindOrder = []struct {
	err  error
	kind Kind
}{
	{ErrNotFound, KindNotFound},
	{ErrConnectFailed, KindConnectFailed},
	{ErrIncompleteCapabilities, KindIncompleteCapabilities},
	{ErrLinkClosed, KindLinkClosed},
	{ErrReadError, KindReadError},
	{ErrWriteError, KindWriteError},
	{ErrAPTimeout, KindAPTimeout},
	{ErrIncompleteCredentials, KindIncompleteCredentials},
	{ErrJoinFailed, KindJoinFailed},
	{ErrJoinTimeout, KindJoinTimeout},
	{ErrHTTP, KindHTTPError},
	{ErrTimeSource, KindTimeSource},
}

// KindOf maps err to its taxonomy tag.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, entry := range kindOrder {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}
	if isCanceled(err) {
		return KindCanceled
	}

	return KindOther
}

// IncompleteCapabilitiesError names the control characteristics that were
// not found during enumeration.
type IncompleteCapabilitiesError struct {
	Missing []Capability
}

func (e *IncompleteCapabilitiesError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, c := range e.Missing {
		names = append(names, string(c))
	}

	return fmt.Sprintf("%s: %s", ErrIncompleteCapabilities, strings.Join(names, ", "))
}

func (e *IncompleteCapabilitiesError) Unwrap() error {
	return ErrIncompleteCapabilities
}

// HTTPError is a failed time-set exchange. StatusCode is 0 when the request
// never produced a response.
type HTTPError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s: status %d", ErrHTTP, e.StatusCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}

	return msg
}

func (e *HTTPError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrHTTP, e.Err}
	}

	return []error{ErrHTTP}
}
